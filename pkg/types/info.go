package types

import "fmt"

// InfoFormat selects the position overlay.
type InfoFormat int

const (
	InfoNone InfoFormat = iota
	InfoShort
	InfoLong
)

// Next cycles none, short, long.
func (f InfoFormat) Next() InfoFormat {
	switch f {
	case InfoNone:
		return InfoShort
	case InfoShort:
		return InfoLong
	}
	return InfoNone
}

func (f InfoFormat) String() string {
	switch f {
	case InfoShort:
		return "short"
	case InfoLong:
		return "long"
	}
	return "none"
}

// ParseInfoFormat parses the names used in the config file.
func ParseInfoFormat(s string) (InfoFormat, error) {
	switch s {
	case "none":
		return InfoNone, nil
	case "short", "":
		return InfoShort, nil
	case "long":
		return InfoLong, nil
	}
	return InfoNone, fmt.Errorf("unknown info format %q", s)
}
