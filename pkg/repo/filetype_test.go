// SPDX-License-Identifier: MPL-2.0

package repo

import "testing"

func TestTypeForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path         string
		want         FileType
		wantCategory FileCategory
		wantLib      bool
		wantResource bool
	}{
		{"proj/src/main/java/TestRunner.groovy", TypeGroovy, CategoryScript, true, false},
		{"proj/lib/dep.jar", TypeJar, CategoryLibrary, true, false},
		{"proj/lib/native.SO", TypeSharedLib, CategoryLibrary, true, false},
		{"proj/src/main/resources/data.csv", TypeCSV, CategoryResource, false, true},
		{"proj/src/main/resources/conf.xml", TypeXML, CategoryResource, false, true},
		{"proj/pom.xml", TypeDescriptor, CategoryDescriptor, false, false},
		{"proj/README", TypeUnknown, CategoryEtc, false, false},
		{"proj/odd.pom", TypeUnknown, CategoryEtc, false, false},
		{"proj/odd.dir", TypeUnknown, CategoryEtc, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got := TypeForPath(tt.path)
			if got != tt.want {
				t.Fatalf("TypeForPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
			if got.Category() != tt.wantCategory {
				t.Errorf("Category() = %q, want %q", got.Category(), tt.wantCategory)
			}
			if got.IsLibDistributable() != tt.wantLib {
				t.Errorf("IsLibDistributable() = %v, want %v", got.IsLibDistributable(), tt.wantLib)
			}
			if got.IsResourceDistributable() != tt.wantResource {
				t.Errorf("IsResourceDistributable() = %v, want %v", got.IsResourceDistributable(), tt.wantResource)
			}
		})
	}
}

func TestFileEntryType(t *testing.T) {
	t.Parallel()

	e := FileEntry{Path: "proj/lib"}
	if e.Type() != TypeUnknown {
		t.Errorf("Type() = %q, want derived %q", e.Type(), TypeUnknown)
	}
	e.FileType = TypeDir
	if !e.IsDir() {
		t.Error("IsDir() = false for explicit directory type")
	}
	if FileType("bogus").Category() != CategoryEtc {
		t.Error("unknown file types should fall back to CategoryEtc")
	}
}
