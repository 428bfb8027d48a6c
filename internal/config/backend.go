package config

// ConfigBackend is where `memojo config set` persists non-secret keys: the
// com.memojo.app defaults domain on macOS, $XDG_CONFIG_HOME/memojo/config.json
// elsewhere. A missing key reports ok=false, not an error.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
