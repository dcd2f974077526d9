package products

import (
	"regexp"
	"strings"
)

var mediaTagRe = regexp.MustCompile(`\[MEDIA:([^\]]*)\]`)

// ParseMediaTag splits a legacy variant notes value into the clean notes text
// and the media URLs embedded in a [MEDIA:url1,url2,...] tag. Older catalog
// rows carried their media this way before the variant_media table existed;
// new writes never produce the tag, but imports still accept it.
func ParseMediaTag(notes string) (string, []string) {
	match := mediaTagRe.FindStringSubmatchIndex(notes)
	if match == nil {
		return strings.TrimSpace(notes), nil
	}

	raw := notes[match[2]:match[3]]
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if url := strings.TrimSpace(part); url != "" {
			urls = append(urls, url)
		}
	}

	clean := notes[:match[0]] + notes[match[1]:]
	return strings.TrimSpace(clean), urls
}
