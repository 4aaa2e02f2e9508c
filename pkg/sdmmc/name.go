package sdmmc

import "strings"

const shortNameSpecials = "!#$%&'()-@^_`{}~"

// IsShortName checks name against the FAT 8.3 short name rules:
// up to 8 characters, an optional dot and up to 3 characters of extension,
// letters, digits and a restricted set of punctuation. Lower case letters
// are accepted and fold to upper case.
func IsShortName(name string) bool {
	base, ext := name, ""
	if pos := strings.IndexByte(name, '.'); pos >= 0 {
		base, ext = name[:pos], name[pos+1:]
		if len(ext) == 0 || strings.IndexByte(ext, '.') >= 0 {
			return false
		}
	}
	if len(base) == 0 || len(base) > 8 || len(ext) > 3 {
		return false
	}
	return shortNameChars(base) && shortNameChars(ext)
}

func shortNameChars(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case strings.IndexByte(shortNameSpecials, c) >= 0:
		default:
			return false
		}
	}
	return true
}
