// Package quality parses release-quality indicators (resolution, source)
// out of filenames. The organizer uses these purely for reporting; actual
// duplicate resolution compares probed stream geometry, not filename claims.
package quality

import (
	"path/filepath"
	"strings"
)

// Source is the release source tier, ordered worst to best.
type Source int

const (
	SourceUnknown Source = iota
	SourceCAM
	SourceDVDRip
	SourceHDTV
	SourceWEBRip
	SourceWEBDL
	SourceBluRay
	SourceREMUX
)

func (s Source) String() string {
	switch s {
	case SourceCAM:
		return "CAM"
	case SourceDVDRip:
		return "DVDRip"
	case SourceHDTV:
		return "HDTV"
	case SourceWEBRip:
		return "WEBRip"
	case SourceWEBDL:
		return "WEB-DL"
	case SourceBluRay:
		return "BluRay"
	case SourceREMUX:
		return "REMUX"
	default:
		return ""
	}
}

// Resolution is the vertical resolution claimed by the filename.
type Resolution int

const (
	ResolutionUnknown Resolution = 0
	Resolution480p    Resolution = 480
	Resolution720p    Resolution = 720
	Resolution1080p   Resolution = 1080
	Resolution2160p   Resolution = 2160
)

func (r Resolution) String() string {
	switch r {
	case Resolution480p:
		return "480p"
	case Resolution720p:
		return "720p"
	case Resolution1080p:
		return "1080p"
	case Resolution2160p:
		return "2160p"
	default:
		return ""
	}
}

// Info is the parsed quality of one filename.
type Info struct {
	Resolution Resolution
	Source     Source
}

// String renders the info for reports, e.g. "1080p BluRay". Empty when
// nothing was recognized.
func (i Info) String() string {
	parts := make([]string, 0, 2)
	if s := i.Resolution.String(); s != "" {
		parts = append(parts, s)
	}
	if s := i.Source.String(); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Parse extracts quality indicators from a filename.
func Parse(filename string) Info {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	upper := strings.ToUpper(base)

	return Info{
		Resolution: parseResolution(upper),
		Source:     parseSource(upper),
	}
}

func parseResolution(upper string) Resolution {
	switch {
	case strings.Contains(upper, "2160P") || strings.Contains(upper, "4K") || strings.Contains(upper, "UHD"):
		return Resolution2160p
	case strings.Contains(upper, "1080P") || strings.Contains(upper, "1080I"):
		return Resolution1080p
	case strings.Contains(upper, "720P"):
		return Resolution720p
	case strings.Contains(upper, "480P"):
		return Resolution480p
	default:
		return ResolutionUnknown
	}
}

func parseSource(upper string) Source {
	switch {
	case strings.Contains(upper, "REMUX"):
		return SourceREMUX
	case strings.Contains(upper, "BLURAY") || strings.Contains(upper, "BLU-RAY") || strings.Contains(upper, "BDRIP"):
		return SourceBluRay
	case strings.Contains(upper, "WEB-DL") || strings.Contains(upper, "WEBDL"):
		return SourceWEBDL
	case strings.Contains(upper, "WEBRIP") || strings.Contains(upper, "WEB-RIP"):
		return SourceWEBRip
	case strings.Contains(upper, "HDTV"):
		return SourceHDTV
	case strings.Contains(upper, "DVDRIP"):
		return SourceDVDRip
	case strings.Contains(upper, "CAMRIP") || strings.Contains(upper, "HDCAM"):
		return SourceCAM
	default:
		return SourceUnknown
	}
}
