package domain

import (
	"net/url"
	"strings"
)

// Platform represents the source platform of a media URL
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformX         Platform = "x" // X/Twitter
	PlatformTikTok    Platform = "tiktok"
	PlatformOther     Platform = "other"
)

var platformHosts = map[string]Platform{
	"youtube.com":   PlatformYouTube,
	"youtu.be":      PlatformYouTube,
	"instagram.com": PlatformInstagram,
	"x.com":         PlatformX,
	"twitter.com":   PlatformX,
	"tiktok.com":    PlatformTikTok,
}

// DetectPlatform detects the platform from a URL's host
func DetectPlatform(rawURL string) Platform {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return PlatformOther
	}
	host := strings.ToLower(u.Hostname())
	for domain, platform := range platformHosts {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform
		}
	}
	return PlatformOther
}

// ValidateMediaURL checks that a URL is present and is an absolute http(s) URL
func ValidateMediaURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return NewError(ErrKindValidation, "validate url", errURLRequired)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return NewError(ErrKindValidation, "validate url", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewError(ErrKindValidation, "validate url", errURLMalformed)
	}
	return nil
}
