// Package googlefonts reads the font directory from the Google Fonts
// developer API (GET /webfonts/v1/webfonts).
//
// The response lists families with their variant tokens ("regular", "italic",
// "700", "700italic", ...) and one file URL per variant:
//
//	{"items": [{"family": "Inter", "variants": ["regular", "700"],
//	            "files": {"regular": "https://...", "700": "https://..."}}]}
//
// [Client.FetchDirectory] turns this into a [font.FamilyDictionary]. Any
// server returning the same shape works, which is how tests and self-hosted
// mirrors are served.
//
// [font.FamilyDictionary]: github.com/matzehuels/fontfetch/pkg/font.FamilyDictionary
package googlefonts
