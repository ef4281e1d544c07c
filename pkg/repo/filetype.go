// SPDX-License-Identifier: MPL-2.0

package repo

import (
	stdpath "path"
	"strings"
)

// Categories group file types by the role they play in a script project.
const (
	CategoryScript     FileCategory = "script"
	CategoryLibrary    FileCategory = "library"
	CategoryResource   FileCategory = "resource"
	CategoryDescriptor FileCategory = "descriptor"
	CategoryDirectory  FileCategory = "directory"
	CategoryEtc        FileCategory = "etc"
)

// Known file types. The zero value means "not set"; [FileEntry.Type] then
// derives the type from the path.
const (
	TypeGroovy     FileType = "groovy"
	TypePython     FileType = "py"
	TypeJava       FileType = "java"
	TypeJar        FileType = "jar"
	TypeClass      FileType = "class"
	TypeSharedLib  FileType = "so"
	TypeDLL        FileType = "dll"
	TypeZip        FileType = "zip"
	TypeXML        FileType = "xml"
	TypeText       FileType = "txt"
	TypeCSV        FileType = "csv"
	TypeJSON       FileType = "json"
	TypeProperties FileType = "properties"
	TypeYAML       FileType = "yaml"
	TypeYML        FileType = "yml"
	TypeData       FileType = "dat"
	TypeDescriptor FileType = "pom"
	TypeDir        FileType = "dir"
	TypeUnknown    FileType = "unknown"
)

// DescriptorName is the file name of the project manifest that authorizes
// Maven-style packaging.
const DescriptorName = "pom.xml"

type (
	// FileCategory is the coarse role of a file type.
	FileCategory string

	// FileType classifies a repository entry.
	FileType string

	fileTypeInfo struct {
		category    FileCategory
		description string
		editable    bool
		libDist     bool
	}
)

var fileTypes = map[FileType]fileTypeInfo{
	TypeGroovy:     {CategoryScript, "Groovy Script", true, true},
	TypePython:     {CategoryScript, "Jython Script", true, true},
	TypeJava:       {CategoryScript, "Java Source", true, true},
	TypeJar:        {CategoryLibrary, "Jar File", false, true},
	TypeClass:      {CategoryLibrary, "Java Class", false, true},
	TypeSharedLib:  {CategoryLibrary, "Shared Library", false, true},
	TypeDLL:        {CategoryLibrary, "Windows Library", false, true},
	TypeZip:        {CategoryLibrary, "Zip Archive", false, true},
	TypeXML:        {CategoryResource, "XML", true, false},
	TypeText:       {CategoryResource, "Text", true, false},
	TypeCSV:        {CategoryResource, "CSV", true, false},
	TypeJSON:       {CategoryResource, "JSON", true, false},
	TypeProperties: {CategoryResource, "Properties", true, false},
	TypeYAML:       {CategoryResource, "YAML", true, false},
	TypeYML:        {CategoryResource, "YAML", true, false},
	TypeData:       {CategoryResource, "Data", false, false},
	TypeDescriptor: {CategoryDescriptor, "Maven Project Descriptor", true, false},
	TypeDir:        {CategoryDirectory, "Directory", false, false},
	TypeUnknown:    {CategoryEtc, "Unknown", false, false},
}

// TypeForPath derives the file type from a repository path.
func TypeForPath(p string) FileType {
	base := stdpath.Base(p)
	if base == DescriptorName {
		return TypeDescriptor
	}
	ext := strings.ToLower(strings.TrimPrefix(stdpath.Ext(base), "."))
	if ext == "" {
		return TypeUnknown
	}
	t := FileType(ext)
	if _, ok := fileTypes[t]; !ok || t == TypeDescriptor || t == TypeDir || t == TypeUnknown {
		return TypeUnknown
	}
	return t
}

func (t FileType) info() fileTypeInfo {
	if info, ok := fileTypes[t]; ok {
		return info
	}
	return fileTypes[TypeUnknown]
}

// Category returns the category of the file type.
func (t FileType) Category() FileCategory { return t.info().category }

// Description returns a human-readable name for the file type.
func (t FileType) Description() string { return t.info().description }

// IsEditable reports whether files of this type are text meant to be edited.
func (t FileType) IsEditable() bool { return t.info().editable }

// IsLibDistributable reports whether files of this type are shipped as
// libraries alongside a script.
func (t FileType) IsLibDistributable() bool { return t.info().libDist }

// IsResourceDistributable reports whether files of this type are shipped as
// resources alongside a script.
func (t FileType) IsResourceDistributable() bool { return t.info().category == CategoryResource }

// String returns the type name.
func (t FileType) String() string { return string(t) }
