package ratelimit

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultAllowAgents 开发/测试工具的 UA 片段，命中即放行
var DefaultAllowAgents = []string{
	"postmanruntime",
	"insomnia",
	"curl/",
	"httpie",
	"thunder client",
	"python-requests",
	"axios",
	"node-fetch",
	"okhttp",
}

var botSignatures = []string{
	"bot", "crawler", "spider", "slurp", "scraper", "scrapy",
	"headless", "phantomjs", "wget",
}

var shieldSignatures = []string{
	"../", "..\\", "/etc/passwd", "%00", "\x00",
	"<script", "javascript:", "onerror=",
	"union select", "' or '1'='1", "\" or \"1\"=\"1", " or 1=1", "; drop table", "sleep(",
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// AllowListed 大小写不敏感的子串匹配
func AllowListed(ua string, agents []string) bool {
	if ua == "" {
		return false
	}
	return containsAny(strings.ToLower(ua), agents)
}

// IsBot 空 UA 也算
func IsBot(ua string) bool {
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return true
	}
	return containsAny(strings.ToLower(ua), botSignatures)
}

// IsShielded 路径穿越、脚本注入、SQL 注入特征，以及 TRACE/TRACK
func IsShielded(method, path, rawQuery string) bool {
	if method == http.MethodTrace || strings.EqualFold(method, "TRACK") {
		return true
	}
	s := path + "?" + rawQuery
	if dec, err := url.QueryUnescape(s); err == nil {
		s = dec
	}
	return containsAny(strings.ToLower(s), shieldSignatures)
}
