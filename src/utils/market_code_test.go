package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"shanghai main board", "600000", "sh600000"},
		{"shanghai star market", "688981", "sh688981"},
		{"leading zero goes to shenzhen", "000001", "sz000001"},
		{"shenzhen main board", "000002", "sz000002"},
		{"shenzhen b share", "200002", "sz200002"},
		{"chinext", "300750", "sz300750"},
		{"shenzhen index", "399001", "sz399001"},
		{"already qualified", "sh600000", "sh600000"},
		{"upper-case shanghai prefix", "SH600000", "sh600000"},
		{"upper-case shenzhen prefix", "SZ000001", "sz000001"},
		{"mixed-case prefix", "Sz399006", "sz399006"},
		{"surrounding spaces", "  600519 ", "sh600519"},
		{"empty", "", ""},
		{"blank", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Qualify(tc.in))
		})
	}
}

func TestQualify_Idempotent(t *testing.T) {
	for _, code := range []string{"600000", "000001", "399001", "SH600000", "sz300750", "", "900901"} {
		once := Qualify(code)
		assert.Equal(t, once, Qualify(once), "code %q", code)
	}
}

func TestBare(t *testing.T) {
	cases := map[string]string{
		"sh600000":  "600000",
		"SZ000001":  "000001",
		"300750":    "300750",
		" sz399001": "399001",
		"":          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Bare(in), "Bare(%q)", in)
	}
}

func TestBare_InvertsQualify(t *testing.T) {
	for _, code := range []string{"600000", "000001", "399001", "688981"} {
		assert.Equal(t, code, Bare(Qualify(code)))
	}
}

func TestIsQualified(t *testing.T) {
	assert.True(t, IsQualified("sh600000"))
	assert.True(t, IsQualified("SZ000001"))
	assert.False(t, IsQualified("600000"))
	assert.False(t, IsQualified("s"))
	assert.False(t, IsQualified(""))
}
