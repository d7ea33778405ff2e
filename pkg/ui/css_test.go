package ui

import (
	"testing"
)

func TestParseCustomProperties(t *testing.T) {
	css := `
/* --primary: #000000; */
:host {
  --Primary: #bd93f9;
  --match:#ffb86c ;
  color: red;
}
.other { --match: #123456 }
`
	props := ParseCustomProperties(css)
	if len(props) != 2 {
		t.Fatalf("props = %v", props)
	}
	if props["primary"] != "#bd93f9" {
		t.Errorf("primary = %q", props["primary"])
	}
	if props["match"] != "#123456" {
		t.Errorf("later declaration should win, match = %q", props["match"])
	}
}

func TestWithPropertiesSkipsBadValues(t *testing.T) {
	base := TestTheme()
	got := base.WithProperties(map[string]string{
		"primary": "not-a-color",
		"unknown": "#ffffff",
		"error":   "#f00",
	})
	if got.Primary != base.Primary {
		t.Errorf("invalid value replaced primary: %v", got.Primary)
	}
	if got.Error != ThemeFg("#f00") {
		t.Errorf("error = %v", got.Error)
	}
}
