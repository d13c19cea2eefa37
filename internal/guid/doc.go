// Package guid parses media-server native guids such as
// "com.plexapp.agents.themoviedb://603?lang=en" into partial identifier sets.
//
// Parsing is pure. Failures carry services.ErrNoMatch for items the server
// matched locally and services.ErrUnsupportedAgent for everything else the
// resolver cannot start a fallback chain from.
package guid
