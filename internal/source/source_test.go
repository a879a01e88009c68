package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGame = domain.Game{Name: "王者荣耀"}

func serve(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>王者荣耀新闻</title>
  <link>https://pvp.qq.com/web201706/newsindex.shtml</link>
  <item>
    <title>王者荣耀10月19日更新公告</title>
    <link>https://pvp.qq.com/web201706/newsdetail.shtml?tid=1</link>
    <pubDate>Mon, 19 Oct 2026 01:00:00 +0000</pubDate>
  </item>
  <item>
    <title>王者荣耀新英雄爆料</title>
    <link>//pvp.qq.com/web201706/newsdetail.shtml?tid=2</link>
  </item>
</channel>
</rss>`

func TestRSSAdapter_Fetch(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/rss+xml", rssFeed)
	a := NewRSSAdapter(domain.SourceConfig{Kind: domain.SourceRSS, URL: srv.URL, Label: "RSSHub"}, NewHTTPClient(time.Second))

	res := a.Fetch(context.Background(), testGame)

	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	assert.Equal(t, "RSSHub", res.Source)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "王者荣耀10月19日更新公告", res.Items[0].Title)
	assert.Equal(t, "2026-10-19T01:00:00Z", res.Items[0].Published)
	assert.Equal(t, time.RFC3339, res.Items[0].PublishedLayout)
	assert.Equal(t, "https://pvp.qq.com/web201706/newsindex.shtml", res.Items[0].FallbackLink)
	assert.Equal(t, "", res.Items[1].Published)
	assert.Equal(t, "", res.Items[1].PublishedLayout)
	assert.Equal(t, "//pvp.qq.com/web201706/newsdetail.shtml?tid=2", res.Items[1].Link)
}

func TestRSSAdapter_UpstreamError(t *testing.T) {
	srv := serve(t, http.StatusBadGateway, "text/plain", "oops")
	a := NewRSSAdapter(domain.SourceConfig{URL: srv.URL}, NewHTTPClient(time.Second))

	res := a.Fetch(context.Background(), testGame)

	assert.False(t, res.OK())
	assert.True(t, errors.Is(res.Err, ErrUpstreamStatus))
	assert.Empty(t, res.Items)
}

func TestRSSAdapter_MalformedFeed(t *testing.T) {
	srv := serve(t, http.StatusOK, "text/plain", "definitely not a feed")
	a := NewRSSAdapter(domain.SourceConfig{URL: srv.URL}, NewHTTPClient(time.Second))

	res := a.Fetch(context.Background(), testGame)

	assert.True(t, errors.Is(res.Err, ErrUpstreamPayload))
}

const cmsScript = `var newsData = {"status":0,"data":{"items":[
{"iNewsId":101,"sTitle":"王者荣耀更新公告","sIdxTime":"2026-10-19 09:00:00","sCategoryName":"公告"},
{'iNewsId': 102, 'sTitle': '停机维护', 'sRedirectURL': 'https:\/\/pvp.qq.com\/cp\/a.html', 'sCreated': '2026-10-18 20:00:00'},
{"iNewsId":103,"sDesc":"no title here"}
]}};`

func TestParseCMSRecords(t *testing.T) {
	records, err := ParseCMSRecords(cmsScript, "newsData")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `王者荣耀更新公告`, records[0]["sTitle"])
	assert.Equal(t, "101", records[0]["iNewsId"])
	assert.Equal(t, "停机维护", records[1]["sTitle"])
	assert.Equal(t, "2026-10-18 20:00:00", records[1]["sCreated"])
}

func TestParseCMSRecords_NoMatch(t *testing.T) {
	_, err := ParseCMSRecords("var x = 1;", "")
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = ParseCMSRecords(cmsScript, "otherVar")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestCMSJSAdapter_Fetch(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/javascript", cmsScript)
	a := NewCMSJSAdapter(domain.SourceConfig{
		Kind:     domain.SourceCMSJS,
		URL:      srv.URL,
		BaseURL:  "https://pvp.qq.com/web201706/newsindex.shtml",
		Variable: "newsData",
	}, NewHTTPClient(time.Second))

	res := a.Fetch(context.Background(), testGame)

	require.True(t, res.OK())
	require.Len(t, res.Items, 2)
	assert.Equal(t, "newsdetail.shtml?tid=101", res.Items[0].Link)
	assert.Equal(t, "2026-10-19 09:00:00", res.Items[0].Published)
	assert.Equal(t, "公告", res.Items[0].SourceLabel)
	assert.Equal(t, "https://pvp.qq.com/cp/a.html", res.Items[1].Link)
	assert.Equal(t, "官网", res.Items[1].SourceLabel)
}

const weiboPayload = `{"ok":1,"data":{"cards":[
{"card_type":9,"mblog":{"id":"5001","text":"【版本更新】<br/>王者荣耀 <a href=\"/n/x\">新赛季</a>今日开启","created_at":"Mon Oct 19 08:00:00 +0800 2026","user":{"screen_name":"王者荣耀"}}},
{"card_type":11,"mblog":null},
{"card_type":9,"mblog":{"id":"5002","text":"","created_at":"刚刚"}}
]}}`

func TestWeiboAdapter_Fetch(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", weiboPayload)
	a := NewWeiboAdapter(domain.SourceConfig{URL: srv.URL}, NewHTTPClient(time.Second))

	res := a.Fetch(context.Background(), testGame)

	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "【版本更新】 王者荣耀 新赛季今日开启", res.Items[0].Title)
	assert.Equal(t, "https://m.weibo.cn/detail/5001", res.Items[0].Link)
	assert.Equal(t, "Mon Oct 19 08:00:00 +0800 2026", res.Items[0].Published)
	assert.Equal(t, time.RubyDate, res.Items[0].PublishedLayout)
	assert.Equal(t, "王者荣耀", res.Items[0].SourceLabel)
}

func TestWeiboAdapter_NotOK(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", `{"ok":0,"msg":"请求过于频繁"}`)
	a := NewWeiboAdapter(domain.SourceConfig{URL: srv.URL}, NewHTTPClient(time.Second))

	res := a.Fetch(context.Background(), testGame)

	assert.ErrorIs(t, res.Err, ErrUpstreamPayload)
}

const bilibiliPayload = `{"code":0,"message":"0","data":{"items":[
{"id_str":"900","modules":{"module_author":{"name":"王者荣耀","pub_ts":1792310400},"module_dynamic":{"major":{"archive":{"title":"王者荣耀新赛季CG","jump_url":"//www.bilibili.com/video/BV1xx"}}}}},
{"id_str":"901","modules":{"module_author":{"name":"王者荣耀","pub_ts":1792310500},"module_dynamic":{"desc":{"text":"  维护公告  已完成 "}}}},
{"id_str":"902","modules":{"module_author":{"name":"王者荣耀"},"module_dynamic":{}}}
]}}`

func TestBilibiliAdapter_Fetch(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", bilibiliPayload)
	a := NewBilibiliAdapter(domain.SourceConfig{URL: srv.URL}, NewHTTPClient(time.Second))

	res := a.Fetch(context.Background(), testGame)

	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "王者荣耀新赛季CG", res.Items[0].Title)
	assert.Equal(t, "//www.bilibili.com/video/BV1xx", res.Items[0].Link)
	assert.Equal(t, "1792310400", res.Items[0].Published)
	assert.Equal(t, "维护公告 已完成", res.Items[1].Title)
	assert.Equal(t, "https://t.bilibili.com/901", res.Items[1].Link)
}

func TestBilibiliAdapter_RiskControl(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", `{"code":-352,"message":"风控校验失败"}`)
	a := NewBilibiliAdapter(domain.SourceConfig{URL: srv.URL}, NewHTTPClient(time.Second))

	res := a.Fetch(context.Background(), testGame)

	assert.ErrorIs(t, res.Err, ErrUpstreamPayload)
}

const htmlPage = `<html><body><ul class="list">
<li class="post"><a class="t" href="/moment/1">王者荣耀 更新 公告</a><time datetime="2026-10-19T08:00:00+08:00">今天</time></li>
<li class="post"><a class="t" href="https://www.taptap.cn/moment/2">  </a></li>
<li class="post"><a class="t" href="/moment/3">维护通知</a><span class="d">2026-10-18</span></li>
</ul></body></html>`

func TestHTMLAdapter_Fetch(t *testing.T) {
	srv := serve(t, http.StatusOK, "text/html", htmlPage)
	a, err := NewHTMLAdapter(domain.SourceConfig{
		URL:     srv.URL,
		BaseURL: "https://www.taptap.cn/app/2301",
		Label:   "TapTap",
		Selectors: &domain.HTMLSelectors{
			Item:  "li.post",
			Title: "a.t",
			Link:  "a.t",
			Date:  "time, span.d",
		},
	}, NewHTTPClient(time.Second))
	require.NoError(t, err)

	res := a.Fetch(context.Background(), testGame)

	require.True(t, res.OK())
	require.Len(t, res.Items, 2)
	assert.Equal(t, "王者荣耀 更新 公告", res.Items[0].Title)
	assert.Equal(t, "/moment/1", res.Items[0].Link)
	assert.Equal(t, "2026-10-19T08:00:00+08:00", res.Items[0].Published)
	assert.Equal(t, "2026-10-18", res.Items[1].Published)
	assert.Equal(t, "TapTap", res.Items[1].SourceLabel)
	assert.Equal(t, "https://www.taptap.cn/app/2301", res.Items[1].FallbackLink)
}

func TestNewAdapter(t *testing.T) {
	client := NewHTTPClient(0)

	for _, kind := range []domain.SourceKind{domain.SourceRSS, domain.SourceCMSJS, domain.SourceWeibo, domain.SourceBilibili} {
		a, err := NewAdapter(domain.SourceConfig{Kind: kind, URL: "https://example.com"}, client)
		require.NoError(t, err)
		assert.NotEmpty(t, a.Name())
	}

	_, err := NewAdapter(domain.SourceConfig{Kind: domain.SourceHTML}, client)
	assert.ErrorIs(t, err, ErrMissingSelectors)

	_, err = NewAdapter(domain.SourceConfig{Kind: "ftp"}, client)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}
