package github

import "strings"

// parseLinkHeader maps each rel of an RFC 8288 Link header to its target URL:
//
//	<https://api.github.com/user/repos?page=2>; rel="next", <...?page=5>; rel="last"
func parseLinkHeader(header string) map[string]string {
	links := make(map[string]string)
	if header == "" {
		return links
	}

	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(strings.TrimSpace(part), ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		target = target[1 : len(target)-1]

		for _, param := range segments[1:] {
			rel, ok := strings.CutPrefix(strings.TrimSpace(param), "rel=")
			if !ok {
				continue
			}
			for _, name := range strings.Fields(strings.Trim(rel, `"`)) {
				links[name] = target
			}
		}
	}
	return links
}
