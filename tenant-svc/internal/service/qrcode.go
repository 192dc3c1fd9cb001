package service

import (
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	MenuURL(slug string) string
	Generate(slug string) ([]byte, error)
}

// DefaultQRGenerator encodes the public menu link of a restaurant.
type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) MenuURL(slug string) string {
	return strings.TrimRight(g.BaseURL, "/") + "/" + slug
}

func (g DefaultQRGenerator) Generate(slug string) ([]byte, error) {
	return qrcode.Encode(g.MenuURL(slug), qrcode.Medium, 256)
}
