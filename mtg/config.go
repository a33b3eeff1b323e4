package mtg

type Configuration struct {
	Batch    int `toml:"batch"`
	Interval int `toml:"interval-ms"`
}
