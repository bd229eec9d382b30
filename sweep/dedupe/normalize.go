package dedupe

import (
	"strings"
	"unicode"

	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/common"
)

// NormalizeName reduces a file name to its comparison key: the stem without
// a trailing digit run or surrounding whitespace, lower-cased, followed by
// the lower-cased extension. "file2.txt" and "file.txt" share the key
// "file.txt"; digits that are not last in the stem are kept.
func NormalizeName(filename string) string {
	stem, ext := common.SplitExt(filename)
	stem = strings.TrimRightFunc(stem, unicode.IsDigit)
	stem = strings.TrimSpace(stem)
	return strings.ToLower(stem) + strings.ToLower(ext)
}
