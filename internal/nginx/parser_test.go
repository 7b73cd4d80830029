package nginx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleVhost = `server {
    listen 80;
    server_name shop.example.com www.shop.example.com;

    location / {
        proxy_pass http://10.0.0.5:3001;
        proxy_set_header Host $host;
    }
}
`

func TestParse(t *testing.T) {
	site := Parse(sampleVhost)

	assert.Equal(t, []string{"shop.example.com", "www.shop.example.com"}, site.ServerNames)
	assert.Equal(t, "shop.example.com", site.Primary())
	assert.Equal(t, "10.0.0.5", site.UpstreamIP)
	assert.Equal(t, "3001", site.ListenPort)
	assert.Equal(t, FrameworkExpress, site.Framework)
}

func TestParseFlattensRepeatedServerNames(t *testing.T) {
	content := `server {
    server_name a.com b.com;
}
server {
    server_name b.com c.com;
}
`
	site := Parse(content)

	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, site.ServerNames)
	assert.Equal(t, "a.com", site.Primary())
}

func TestParseHTTPSProxyTarget(t *testing.T) {
	site := Parse(`proxy_pass https://192.168.1.20:8443;`)

	assert.Equal(t, "192.168.1.20", site.UpstreamIP)
	assert.Equal(t, "8443", site.ListenPort)
}

func TestParseUsesFirstProxyTarget(t *testing.T) {
	content := `location / { proxy_pass http://10.0.0.5:3001; }
location /api { proxy_pass http://10.0.0.6:4001; }
`
	site := Parse(content)

	assert.Equal(t, "10.0.0.5", site.UpstreamIP)
	assert.Equal(t, "3001", site.ListenPort)
}

func TestParseNextJSMarker(t *testing.T) {
	content := sampleVhost + `
    location /_next/ {
        alias /srv/shop/.next/;
    }
`
	site := Parse(content)

	assert.Equal(t, FrameworkNextJS, site.Framework)
}

func TestParseEmptyContent(t *testing.T) {
	site := Parse("")

	assert.Empty(t, site.ServerNames)
	assert.Equal(t, "", site.Primary())
	assert.Equal(t, "", site.UpstreamIP)
	assert.Equal(t, "", site.ListenPort)
	assert.Equal(t, FrameworkExpress, site.Framework)
}

func TestParseHostnameUpstreamIgnored(t *testing.T) {
	// Only dotted-quad targets carry machine identity; named upstreams are
	// left unresolved.
	site := Parse(`proxy_pass http://app-backend:3001;`)

	assert.Equal(t, "", site.UpstreamIP)
	assert.Equal(t, "", site.ListenPort)
}
