package settings

// Settings holds the per-source visibility flags and the ticker background
// color. Values are always fully populated; a partially filled Settings is
// never stored or broadcast.
type Settings struct {
	ShowXAU bool   `json:"show_xau"` // spot gold
	ShowMS  bool   `json:"show_ms"`  // Minsheng bank gold
	ShowGH  bool   `json:"show_gh"`  // ICBC gold
	ShowZS  bool   `json:"show_zs"`  // Zheshang bank gold
	BGColor string `json:"bg_color"` // opaque CSS color string
}

// Default returns the compiled-in settings used when no persisted value
// exists or the persisted record fails to decode.
func Default() Settings {
	return Settings{
		ShowXAU: true,
		ShowMS:  true,
		ShowGH:  true,
		ShowZS:  true,
		BGColor: "#2c3e50",
	}
}
