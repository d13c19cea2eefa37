package config

const (
	defaultConfigPath          = "~/.config/plexmeta/config.toml"
	defaultDataDir             = "~/.local/share/plexmeta"
	defaultLogDir              = "~/.local/share/plexmeta/logs"
	defaultCacheFile           = "cache.db"
	defaultCacheExpirationDays = 60
	defaultTMDBBaseURL         = "https://api.themoviedb.org/3"
	defaultTMDBLanguage        = "en"
	defaultTraktBaseURL        = "https://api.trakt.tv"
	defaultAniDBMappingURL     = "https://raw.githubusercontent.com/Anime-Lists/anime-lists/master/anime-list-master.xml"
	defaultMALIDListURL        = "https://raw.githubusercontent.com/Fribb/anime-lists/master/anime-list-full.json"
	defaultPlexTimeoutSeconds  = 30
	defaultMappingWorkers      = 1
	maxMappingWorkers          = 32
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Cache: Cache{
			Enabled:        true,
			ExpirationDays: defaultCacheExpirationDays,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Trakt: Trakt{
			BaseURL: defaultTraktBaseURL,
		},
		AniDB: AniDB{
			Enabled:    true,
			MappingURL: defaultAniDBMappingURL,
		},
		MyAnimeList: MyAnimeList{
			Enabled:   true,
			IDListURL: defaultMALIDListURL,
		},
		Plex: Plex{
			TimeoutSeconds: defaultPlexTimeoutSeconds,
		},
		Mapping: Mapping{
			Workers: defaultMappingWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
