package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceTypes maps config names to CDP resource types that may be blocked.
// Script is not blockable: channel pages render from script.
var resourceTypes = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
}

// adHosts are ad and tracking hosts requested by channel pages. None of them
// carries channel data.
var adHosts = map[string]struct{}{
	"doubleclick.net":       {},
	"googlesyndication.com": {},
	"googleadservices.com":  {},
	"google-analytics.com":  {},
	"googletagmanager.com":  {},
	"googletagservices.com": {},
	"adservice.google.com":  {},
	"imasdk.googleapis.com": {},
	"2mdn.net":              {},
	"adnxs.com":             {},
	"amazon-adsystem.com":   {},
	"scorecardresearch.com": {},
	"moatads.com":           {},
	"facebook.net":          {},
}

// isAdDomain reports whether host or one of its parent domains is an ad host.
func isAdDomain(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for host != "" {
		if _, ok := adHosts[host]; ok {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			return false
		}
		host = host[i+1:]
	}
	return false
}

// blockedTypes resolves config names, ignoring unknown ones.
func blockedTypes(names []string) map[proto.NetworkResourceType]struct{} {
	out := make(map[proto.NetworkResourceType]struct{}, len(names))
	for _, name := range names {
		if rt, ok := resourceTypes[strings.TrimSpace(name)]; ok {
			out[rt] = struct{}{}
		}
	}
	return out
}

// shouldBlock decides the fate of one intercepted request.
func shouldBlock(blocked map[proto.NetworkResourceType]struct{}, blockAds bool, rt proto.NetworkResourceType, rawURL string) bool {
	if _, ok := blocked[rt]; ok {
		return true
	}
	if !blockAds {
		return false
	}
	u, err := url.Parse(rawURL)
	return err == nil && isAdDomain(u.Hostname())
}

// setupHijack mounts a request interceptor on page that fails blocked
// requests with BlockedByClient. It returns nil when nothing is blocked;
// otherwise the caller owns the running router and must Stop it.
func setupHijack(page *rod.Page, types []string, blockAds bool) *rod.HijackRouter {
	blocked := blockedTypes(types)
	if len(blocked) == 0 && !blockAds {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if shouldBlock(blocked, blockAds, h.Request.Type(), h.Request.URL().String()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// Run blocks until Stop.
	go router.Run()
	return router
}
