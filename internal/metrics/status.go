// Package metrics exposes prometheus collectors for the pixel node components.
package metrics

const (
	namespace = "pixelnode"
	unknown   = "unknown"
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
