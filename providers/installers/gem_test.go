package installers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestGemInstaller_InstallMethod(t *testing.T) {
	var gotBin string
	var gotArgs []string

	gi := NewGemInstaller("")
	gi.runCmd = func(ctx context.Context, bin string, args ...string) ([]byte, error) {
		gotBin = bin
		gotArgs = args
		return []byte("1 gem installed"), nil
	}

	if err := gi.Install(context.Background(), "bundler", "2.4.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBin != "gem" {
		t.Errorf("expected default 'gem' binary, got %q", gotBin)
	}
	expectedArgs := []string{"install", "bundler", "-v", "2.4.0", "--no-document"}
	if !reflect.DeepEqual(gotArgs, expectedArgs) {
		t.Errorf("unexpected gem arguments: %v", gotArgs)
	}
}

func TestGemInstaller_InstallMethod_Error(t *testing.T) {
	gi := NewGemInstaller("/usr/local/bin/gem")
	gi.runCmd = func(ctx context.Context, bin string, args ...string) ([]byte, error) {
		return []byte("ERROR:  Could not find a valid gem 'bundler' (= 9.9.9)"), errors.New("exit status 2")
	}

	err := gi.Install(context.Background(), "bundler", "9.9.9")
	if err == nil {
		t.Fatal("expected error, got none")
	}

	var installErr *InstallError
	if !errors.As(err, &installErr) {
		t.Fatalf("expected *InstallError, got %T", err)
	}
	if installErr.Name != "bundler" || installErr.Version != "9.9.9" {
		t.Errorf("unexpected error fields: %+v", installErr)
	}
	if installErr.Output == "" {
		t.Error("expected command output to be captured")
	}
}

func TestLocator_FindInstalledMethod(t *testing.T) {
	dir := t.TempDir()
	specs := filepath.Join(dir, "specifications")
	if err := os.MkdirAll(specs, 0o755); err != nil {
		t.Fatalf("unexpected test setup error: %v", err)
	}
	specPath := filepath.Join(specs, "bundler-2.4.0.gemspec")
	if err := os.WriteFile(specPath, []byte("# stub"), 0o644); err != nil {
		t.Fatalf("unexpected test setup error: %v", err)
	}

	locator := Locator{Dirs: []string{dir}}

	installed, ok := locator.FindInstalled("bundler", "2.4.0")
	if !ok {
		t.Fatal("expected to find installed gem")
	}
	if installed.SpecPath != specPath || installed.Version != "2.4.0" {
		t.Errorf("unexpected installed gem: %+v", installed)
	}

	if _, ok := locator.FindInstalled("bundler", "2.5.0"); ok {
		t.Error("expected missing version to not be found")
	}
}
