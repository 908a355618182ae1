package middlewares

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// ApplyProxySettings makes c.IP() read X-Forwarded-For only when the socket peer is one of
// the given proxies. With no proxies the header is ignored.
func ApplyProxySettings(fc *fiber.Config, proxies []string) {
	if len(proxies) == 0 {
		fc.ProxyHeader = ""
		fc.EnableTrustedProxyCheck = false
		fc.TrustedProxies = nil
		return
	}
	fc.ProxyHeader = fiber.HeaderXForwardedFor
	fc.EnableTrustedProxyCheck = true
	fc.TrustedProxies = proxies
	log.Printf("[INFO] client IP from X-Forwarded-For via %v", proxies)
}
