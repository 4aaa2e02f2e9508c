package sdmmc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsShortName(t *testing.T) {
	testCases := []struct {
		name  string
		valid bool
	}{
		{"20240101.LOG", true},
		{"20240101.log", true},
		{"README", true},
		{"A.B", true},
		{"LOG_1~2.TXT", true},
		{"", false},
		{".LOG", false},
		{"NAME.", false},
		{"TOOLONGNAME.LOG", false},
		{"NAME.LONG", false},
		{"A.B.C", false},
		{"SPACE X.LOG", false},
		{"PLUS+.LOG", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.valid, IsShortName(tc.name))
		})
	}
}
