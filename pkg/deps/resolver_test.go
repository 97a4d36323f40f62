package deps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/depvet/depvet/pkg/errors"
	"github.com/depvet/depvet/pkg/integrations"
	"github.com/depvet/depvet/pkg/integrations/crates"
)

type fakeRegistry struct {
	crates map[string]*crates.CrateInfo
	calls  int
}

func (f *fakeRegistry) FetchCrate(_ context.Context, crate string, _ bool) (*crates.CrateInfo, error) {
	f.calls++
	if info, ok := f.crates[crate]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("%w: crate %s", integrations.ErrNotFound, crate)
}

func testRegistry() *fakeRegistry {
	return &fakeRegistry{crates: map[string]*crates.CrateInfo{
		"serde": {
			Name:          "serde",
			Version:       "1.0.193",
			Description:   "A generic serialization/deserialization framework",
			Documentation: "https://docs.rs/serde",
			Repository:    "https://github.com/serde-rs/serde",
			Downloads:     250000000,
		},
		"anyhow": {
			Name:       "anyhow",
			Version:    "1.0.75",
			Repository: "https://github.com/dtolnay/anyhow",
			Downloads:  100000000,
		},
	}}
}

func TestResolveCrateName(t *testing.T) {
	r := NewResolver(testRegistry(), false)

	deps, err := r.Resolve(context.Background(), []string{"serde"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(deps) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(deps))
	}

	dep := deps[0]
	if dep.Name != "serde" {
		t.Errorf("expected name serde, got %q", dep.Name)
	}
	if dep.SourceURL != "https://github.com/serde-rs/serde" {
		t.Errorf("unexpected source URL %q", dep.SourceURL)
	}
	if dep.Version.Local != NoLocalVersion {
		t.Errorf("expected local version %q, got %q", NoLocalVersion, dep.Version.Local)
	}
	if dep.Version.Remote != "1.0.193" {
		t.Errorf("expected remote version 1.0.193, got %q", dep.Version.Remote)
	}
}

func TestResolveSourceURL(t *testing.T) {
	registry := testRegistry()
	r := NewResolver(registry, false)

	deps, err := r.Resolve(context.Background(), []string{"https://github.com/tokio-rs/tokio.git"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(deps) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(deps))
	}

	dep := deps[0]
	if dep.Name != "" {
		t.Errorf("source-only dependency should have no name, got %q", dep.Name)
	}
	if dep.SourceURL != "https://github.com/tokio-rs/tokio" {
		t.Errorf("expected normalized URL, got %q", dep.SourceURL)
	}
	if registry.calls != 0 {
		t.Errorf("source URL should not hit the registry, got %d calls", registry.calls)
	}
}

func TestResolveManifest(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "Cargo.toml")
	content := `[package]
name = "example"
version = "0.1.0"

[dependencies]
serde = "1.0"
anyhow = { version = "1.0", features = ["backtrace"] }
`
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(testRegistry(), false)
	deps, err := r.Resolve(context.Background(), []string{manifest})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(deps))
	}

	// Manifest entries come back sorted by name.
	if deps[0].Name != "anyhow" || deps[1].Name != "serde" {
		t.Errorf("unexpected order: %q, %q", deps[0].Name, deps[1].Name)
	}
	if deps[0].Version.Local != "1.0" {
		t.Errorf("expected pinned version 1.0, got %q", deps[0].Version.Local)
	}
	if deps[1].Version.Local != "1.0" {
		t.Errorf("expected pinned version 1.0, got %q", deps[1].Version.Local)
	}
}

func TestResolveManifestUnpinnedVersion(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "Cargo.toml")
	content := `[dependencies]
serde = { path = "../serde" }
`
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(testRegistry(), false)
	deps, err := r.Resolve(context.Background(), []string{manifest})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if deps[0].Version.Local != NoLocalVersion {
		t.Errorf("expected %q for unpinned dependency, got %q", NoLocalVersion, deps[0].Version.Local)
	}
}

func TestResolveManifestMissing(t *testing.T) {
	r := NewResolver(testRegistry(), false)

	_, err := r.Resolve(context.Background(), []string{"/nonexistent/Cargo.toml"})
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidManifest {
		t.Errorf("expected INVALID_MANIFEST, got %v", errors.GetCode(err))
	}
}

func TestResolveManifestMalformed(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "Cargo.toml")
	if err := os.WriteFile(manifest, []byte("[dependencies\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(testRegistry(), false)
	_, err := r.Resolve(context.Background(), []string{manifest})
	if errors.GetCode(err) != errors.ErrCodeInvalidManifest {
		t.Errorf("expected INVALID_MANIFEST, got %v", err)
	}
}

func TestResolveUnknownCrate(t *testing.T) {
	r := NewResolver(testRegistry(), false)

	_, err := r.Resolve(context.Background(), []string{"definitely-not-a-crate"})
	if err == nil {
		t.Fatal("expected error for unknown crate")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidPackage {
		t.Errorf("expected INVALID_PACKAGE, got %v", errors.GetCode(err))
	}
}

func TestResolveFailFast(t *testing.T) {
	registry := testRegistry()
	r := NewResolver(registry, false)

	_, err := r.Resolve(context.Background(), []string{"missing-crate", "serde"})
	if err == nil {
		t.Fatal("expected error")
	}
	// Resolution aborts on the first failure; serde is never fetched.
	if registry.calls != 1 {
		t.Errorf("expected 1 registry call, got %d", registry.calls)
	}
}

func TestResolveEmptyIdentifier(t *testing.T) {
	r := NewResolver(testRegistry(), false)

	_, err := r.Resolve(context.Background(), []string{""})
	if errors.GetCode(err) != errors.ErrCodeInvalidIdentifier {
		t.Errorf("expected INVALID_IDENTIFIER, got %v", err)
	}
}

func TestDependencyLabel(t *testing.T) {
	named := Dependency{Name: "serde", SourceURL: "https://github.com/serde-rs/serde"}
	if named.Label() != "serde" {
		t.Errorf("expected name label, got %q", named.Label())
	}

	sourceOnly := Dependency{SourceURL: "https://github.com/tokio-rs/tokio"}
	if sourceOnly.Label() != "https://github.com/tokio-rs/tokio" {
		t.Errorf("expected URL label, got %q", sourceOnly.Label())
	}
}
