package hostpkg

import (
	"context"
	"errors"
	"testing"

	"github.com/syscontainers/sysc/internal/manifest"
)

// Backend double recording calls and returning canned results.
type fakeBackend struct {
	generateErr error
	checksums   map[string]string
	generated   int
	installed   int
}

func (f *fakeBackend) GeneratePackage(ctx context.Context, req Request) (string, error) {
	f.generated++
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return "/tmp/fake.rpm", nil
}

func (f *fakeBackend) InstallFiles(ctx context.Context, req Request) (map[string]string, error) {
	f.installed++
	return f.checksums, nil
}

func TestHandleAbsent(t *testing.T) {
	backend := &fakeBackend{checksums: map[string]string{"test": "test_checksum_xxx"}}

	result, err := Handle(context.Background(), backend, SystemPackageAbsent, &manifest.Manifest{}, Request{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(result.Checksums) != 0 {
		t.Fatalf("Checksums = %v, want empty", result.Checksums)
	}
	if result.RPMInstalled {
		t.Fatal("RPMInstalled = true for absent mode")
	}
	if backend.generated != 0 || backend.installed != 0 {
		t.Fatal("backend touched in absent mode")
	}
}

func TestHandleYes(t *testing.T) {
	expected := map[string]string{"test": "test_checksum_xxx"}
	backend := &fakeBackend{checksums: expected}

	result, err := Handle(context.Background(), backend, SystemPackageYes, nil, Request{Name: "test"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !result.RPMInstalled {
		t.Fatal("RPMInstalled = false, want true")
	}
	if backend.generated != 1 || backend.installed != 1 {
		t.Fatalf("generated=%d installed=%d, want 1/1", backend.generated, backend.installed)
	}
	if result.Checksums["test"] != expected["test"] {
		t.Fatalf("Checksums = %v, want %v", result.Checksums, expected)
	}
}

func TestHandleNo(t *testing.T) {
	expected := map[string]string{"test": "test_checksum_xxx"}
	backend := &fakeBackend{checksums: expected}

	result, err := Handle(context.Background(), backend, SystemPackageNo, nil, Request{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.RPMInstalled {
		t.Fatal("RPMInstalled = true, want false")
	}
	if backend.generated != 0 {
		t.Fatal("package generated in no mode")
	}
	if result.Checksums["test"] != expected["test"] {
		t.Fatalf("Checksums = %v, want %v", result.Checksums, expected)
	}
}

func TestHandleGenerateFailure(t *testing.T) {
	backend := &fakeBackend{generateErr: errors.New("rpmbuild exploded")}

	_, err := Handle(context.Background(), backend, SystemPackageYes, nil, Request{})
	if err == nil {
		t.Fatal("Handle succeeded despite package build failure")
	}
	if !errors.Is(err, ErrPackageBuild) {
		t.Fatalf("err = %v, want ErrPackageBuild", err)
	}
	if backend.installed != 0 {
		t.Fatal("files installed after failed package build")
	}
}

func TestParseSystemPackage(t *testing.T) {
	tests := []struct {
		in   string
		want SystemPackage
	}{
		{"yes", SystemPackageYes},
		{"absent", SystemPackageAbsent},
		{"no", SystemPackageNo},
		{"", SystemPackageNo},
		{"bogus", SystemPackageNo},
	}
	for _, tt := range tests {
		if got := ParseSystemPackage(tt.in); got != tt.want {
			t.Errorf("ParseSystemPackage(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
