package common

import "strings"

// SplitExt splits a base name into stem and extension. The extension starts
// at the last dot, unless everything before that dot is dots, so ".bashrc"
// and "..." have no extension.
func SplitExt(name string) (stem, ext string) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return name, ""
	}
	if strings.Trim(name[:dot], ".") == "" {
		return name, ""
	}
	return name[:dot], name[dot:]
}
