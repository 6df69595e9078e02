/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
)

// CSRFInjector automatically injects CSRF token into template data for all routes
func CSRFInjector() flamego.Handler {
	return func(x csrf.CSRF, data template.Data) {
		data["csrf_token"] = x.Token()
	}
}

// FlashInjector moves a pending flash message into data["Flash"] for
// pages. Redirects leave it in place for the page they lead to.
func FlashInjector() flamego.Handler {
	return func(c flamego.Context, s session.Session, data template.Data) {
		if c.Request().Method != http.MethodGet {
			return
		}

		if msg, ok := takeFlash(s); ok {
			data["Flash"] = msg
		}
	}
}

// NoCacheHeaders disables caching for page responses. Every page shows
// patient data or live backend state.
func NoCacheHeaders() flamego.Handler {
	return func(c flamego.Context) {
		header := c.ResponseWriter().Header()
		header.Set("X-Robots-Tag", "noindex, nofollow")

		if c.Request().Method == http.MethodGet || c.Request().Method == http.MethodHead {
			header.Set("Cache-Control", "no-store, max-age=0")
			header.Set("Pragma", "no-cache")
			header.Set("Expires", "0")
		}

		c.Next()
	}
}
