package umat

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		in   string
		want *Reference
	}{
		{"", nil},
		{"None", nil},
		{"  None ", nil},
		{"Texture'MyPkg.Brick01'", &Reference{TypeName: "Texture", PackageName: "MyPkg", ObjectName: "Brick01"}},
		{"Shader'MyPkg.Walls.Inner.Brick'", &Reference{TypeName: "Shader", PackageName: "MyPkg", ObjectName: "Brick"}},
		{"MyPkg.Brick01", &Reference{PackageName: "MyPkg", ObjectName: "Brick01"}},
		{"Texture'My-Pkg.Some Name'", &Reference{TypeName: "Texture", PackageName: "My-Pkg", ObjectName: "Some Name"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseReference(tt.in)
			switch {
			case tt.want == nil && got != nil:
				t.Fatalf("expected nil, got %+v", *got)
			case tt.want != nil && got == nil:
				t.Fatalf("expected %+v, got nil", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Fatalf("got %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestReferenceRoundTrip(t *testing.T) {
	inputs := []string{
		"Texture'MyPkg.Brick01'",
		"Shader'MyPkg.Group.Brick01'",
		"Combiner'A_b-c.D e'",
	}
	for _, in := range inputs {
		first := ParseReference(in)
		second := ParseReference(first.String())
		if second == nil || *first != *second {
			t.Fatalf("round trip of %q: %+v != %+v", in, first, second)
		}
	}
}

func TestReferenceString(t *testing.T) {
	ref := Reference{TypeName: "Texture", PackageName: "Pkg", GroupName: "Grp", ObjectName: "Obj"}
	if got := ref.String(); got != "Texture'Pkg.Grp.Obj'" {
		t.Fatalf("unexpected string %q", got)
	}
	ref.GroupName = ""
	if got := ref.String(); got != "Texture'Pkg.Obj'" {
		t.Fatalf("unexpected string %q", got)
	}
	ref.TypeName = ""
	if got := ref.String(); got != "Pkg.Obj" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestReferenceFromPath(t *testing.T) {
	p := filepath.Join("repo", "exports", "MyPackage", "Texture", "Brick01.props.txt")
	ref, err := ReferenceFromPath(p)
	if err != nil {
		t.Fatalf("from path: %v", err)
	}
	want := Reference{TypeName: "Texture", PackageName: "MyPackage", ObjectName: "Brick01"}
	if ref != want {
		t.Fatalf("got %+v, want %+v", ref, want)
	}

	if _, err := ReferenceFromPath("Brick01.props.txt"); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestExportLayout(t *testing.T) {
	l := ExportLayout{Root: "root"}
	ref := MustParseReference("Texture'MyPkg.Brick01'")
	got := l.PropsPath("Textures/MyPkg.utx", ref)
	want := filepath.Join("root", "exports", "Textures", "MyPkg", "Texture", "Brick01.props.txt")
	if got != want {
		t.Fatalf("props path %q != %q", got, want)
	}
	if got := l.AssetPath("MyPkg.utx", ref, ".tga"); got != filepath.Join("root", "exports", "MyPkg", "Texture", "Brick01.tga") {
		t.Fatalf("asset path %q", got)
	}
}

func TestRotatorRadians(t *testing.T) {
	p, y, r := Rotator{Pitch: 16384, Yaw: 32768, Roll: -65536}.Radians()
	const eps = 1e-12
	if d := p - 1.5707963267948966; d > eps || d < -eps {
		t.Fatalf("pitch %v", p)
	}
	if d := y - 3.141592653589793; d > eps || d < -eps {
		t.Fatalf("yaw %v", y)
	}
	if d := r + 6.283185307179586; d > eps || d < -eps {
		t.Fatalf("roll %v", r)
	}
}
