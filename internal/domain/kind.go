package domain

import "fmt"

// DownloadKind selects the engine options used for a fetch
type DownloadKind string

const (
	KindVideo DownloadKind = "video"
	KindAudio DownloadKind = "audio"
	KindShort DownloadKind = "short"
	KindReel  DownloadKind = "reel"
)

// KindProfile describes how the engine is driven for one kind
type KindProfile struct {
	Kind             DownloadKind
	DefaultFormat    string // used when the request carries no format id
	RequiresFormatID bool
	Container        string // extension of the final file
	MergeFormat      string // passed as --merge-output-format when set
	ExtractAudio     bool
	NoPlaylist       bool
	NameSuffix       string // kind tag placed before the token
	NameByFormatID   bool   // tag the filename with the engine's format id
}

var kindProfiles = map[DownloadKind]KindProfile{
	KindVideo: {
		Kind:             KindVideo,
		RequiresFormatID: true,
		Container:        "mp4",
		MergeFormat:      "mp4",
		NameByFormatID:   true,
	},
	KindAudio: {
		Kind:          KindAudio,
		DefaultFormat: "bestaudio/best",
		Container:     "mp3",
		ExtractAudio:  true,
	},
	KindShort: {
		Kind:          KindShort,
		DefaultFormat: "bestvideo+bestaudio/best",
		Container:     "mp4",
		MergeFormat:   "mp4",
		NoPlaylist:    true,
		NameSuffix:    "short",
	},
	KindReel: {
		Kind:          KindReel,
		DefaultFormat: "best",
		Container:     "mp4",
		MergeFormat:   "mp4",
		NameSuffix:    "reel",
	},
}

// ProfileFor returns the profile of a download kind
func ProfileFor(kind DownloadKind) (KindProfile, error) {
	p, ok := kindProfiles[kind]
	if !ok {
		return KindProfile{}, NewError(ErrKindValidation, "download kind", fmt.Errorf("unsupported download kind: %s", kind))
	}
	return p, nil
}

// FormatSelector returns the engine format expression for a request
func (p KindProfile) FormatSelector(formatID string) (string, error) {
	if formatID != "" {
		if p.Kind == KindShort || p.Kind == KindReel {
			// these kinds always fetch the engine's best rendition
			return p.DefaultFormat, nil
		}
		return formatID, nil
	}
	if p.RequiresFormatID {
		return "", NewError(ErrKindValidation, "format selector", ErrFormatIDRequired)
	}
	return p.DefaultFormat, nil
}
