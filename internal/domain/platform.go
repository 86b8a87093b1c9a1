package domain

// Platform identifies one of the two catalogs a sync touches. Spotify is the
// source (read) side, YouTube the destination (write) side.
type Platform string

const (
	PlatformSpotify Platform = "SPOTIFY"
	PlatformYouTube Platform = "YOUTUBE"
)

func (p Platform) IsValid() bool {
	return p == PlatformSpotify || p == PlatformYouTube
}

func (p Platform) String() string {
	return string(p)
}

func ParsePlatform(s string) (Platform, bool) {
	p := Platform(s)
	return p, p.IsValid()
}
