package normalize

import (
	"strings"
	"testing"
)

func TestFrontMatter_TranslatedKeys(t *testing.T) {
	n := Default()
	input := "---\ncommentaires: vrai\ndescription : Guide de démarrage\nmots-clés: yolo, docs\n---\n\n# Titre\n"
	want := "---\ncomments: true\ndescription: Guide de démarrage\nkeywords: yolo, docs\n---\n\n# Titre\n"
	if got := n.FrontMatter(input); got != want {
		t.Errorf("FrontMatter =\n%q\nwant\n%q", got, want)
	}
}

func TestFrontMatter_FullWidthColon(t *testing.T) {
	n := Default()
	input := "---\n评论：真\n描述：快速开始\n关键词：YOLO\n---\n正文\n"
	want := "---\ncomments: true\ndescription: 快速开始\nkeywords: YOLO\n---\n正文\n"
	if got := n.FrontMatter(input); got != want {
		t.Errorf("FrontMatter =\n%q\nwant\n%q", got, want)
	}
}

func TestFrontMatter_BodyUntouched(t *testing.T) {
	n := Default()
	input := "---\ntitle: Start\n---\nBeschreibung: bleibt so\n"
	if got := n.FrontMatter(input); got != input {
		t.Errorf("body changed: %q", got)
	}
	noFM := "Kommentare: hier\n"
	if got := n.FrontMatter(noFM); got != noFM {
		t.Errorf("text without front matter changed: %q", got)
	}
}

func TestFrontMatter_CRLF(t *testing.T) {
	n := Default()
	input := "---\r\nKommentare: ja\r\n---\r\n"
	want := "---\r\ncomments: true\r\n---\r\n"
	if got := n.FrontMatter(input); got != want {
		t.Errorf("FrontMatter = %q, want %q", got, want)
	}
}

func TestAdmonitions(t *testing.T) {
	n := Default()
	cases := map[string]string{
		"!!! Hinweis \"Titel\"\n":    "!!! note \"Titel\"\n",
		"!!!  警告\n":                  "!!! warning\n",
		"!!! consejo\n":              "!!! tip\n",
		"!!! см. также\n":            "!!! seealso\n",
		"!!! note\n":                 "!!! note\n",
		"Texto sin admonición.\n":    "Texto sin admonición.\n",
		"    !!! Exemple \"Code\"\n": "    !!! example \"Code\"\n",
	}
	for in, want := range cases {
		if got := n.Admonitions(in); got != want {
			t.Errorf("Admonitions(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmbedPermissions(t *testing.T) {
	n := Default()
	perms := DefaultTerms().EmbedPermissions

	translated := `<iframe src="x" allow="accéléromètre; lecture automatique"></iframe>`
	got := n.EmbedPermissions(translated)
	if want := `<iframe src="x" allow="` + perms + `"></iframe>`; got != want {
		t.Errorf("EmbedPermissions = %q, want %q", got, want)
	}

	canonical := `<iframe allow="` + perms + `; fullscreen"></iframe>`
	if got := n.EmbedPermissions(canonical); got != canonical {
		t.Errorf("canonical permissions changed: %q", got)
	}
}

func TestApply_Idempotent(t *testing.T) {
	n := Default()
	input := "---\nBeschreibung: Start\n---\n!!! Tipp\n<iframe allow=\"x\"></iframe>\n"
	once := n.Apply(input)
	if twice := n.Apply(once); twice != once {
		t.Errorf("second pass changed text:\n%q\n%q", once, twice)
	}
	if !strings.Contains(once, "description: Start") || !strings.Contains(once, "!!! tip") {
		t.Errorf("Apply = %q", once)
	}
}

func TestNew_IndependentOfCallerMaps(t *testing.T) {
	terms := DefaultTerms()
	n, err := New(terms)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	terms.Locales["de"][CategoryAdmonition][0] = "anmerkung"

	if got := n.Admonitions("!!! hinweis\n"); got != "!!! note\n" {
		t.Errorf("Admonitions = %q", got)
	}
}

func TestParseTerms_Validation(t *testing.T) {
	cases := map[string]string{
		"missing permissions": "english:\n  front_matter: [a]\n  admonition: [b]\nlocales:\n  fr:\n    front_matter: [x]\n    admonition: [y]\n",
		"short locale":        "embed_permissions: p\nenglish:\n  front_matter: [a, b]\n  admonition: [c]\nlocales:\n  fr:\n    front_matter: [x]\n    admonition: [y]\n",
		"unknown locale":      "embed_permissions: p\nenglish:\n  front_matter: [a]\n  admonition: [b]\nlocales:\n  qqq1:\n    front_matter: [x]\n    admonition: [y]\n",
		"bad yaml":            "embed_permissions: [",
	}
	for name, data := range cases {
		if _, err := ParseTerms([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDefaultTerms_Locales(t *testing.T) {
	terms := DefaultTerms()
	codes := terms.LocaleCodes()
	want := []string{"ar", "de", "es", "fr", "hi", "ja", "ko", "pt", "ru", "zh"}
	if strings.Join(codes, ",") != strings.Join(want, ",") {
		t.Errorf("locales = %v, want %v", codes, want)
	}
}
