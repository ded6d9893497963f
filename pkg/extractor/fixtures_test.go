package extractor

import "strings"

// timelineSnapshot is a profile page with a table of contents, a pinned post
// that repeats further down, and two regular posts.
var timelineSnapshot = strings.Join([]string{
	`- link "nitter" [e1]:`,
	`  - /url: /`,
	`- link "Alice Example" [e2]:`,
	`  - /url: /adev`,
	`- link "@adev" [e3]:`,
	`  - /url: /adev`,
	`- paragraph: Building developer tools. Opinions my own.`,
	`- text: "Joined March 2015"`,
	`- text: "Tweets 1,234"`,
	`- text: "Following 321"`,
	`- text: "Followers 45,678"`,
	`- link [e4]:`,
	`  - /url: /adev/status/1740000000000000000#m`,
	`- link [e5]:`,
	`  - /url: /adev/status/1750000000000000001#m`,
	`- list:`,
	`  - listitem:`,
	`- link [e10]:`,
	`  - /url: /adev/status/1740000000000000000#m`,
	`- text: "Pinned Tweet"`,
	`- link "Alice Example" [e11]:`,
	`  - /url: /adev`,
	`- link "@adev" [e12]:`,
	`  - /url: /adev`,
	`- link "Jan 5, 2024" [e13]:`,
	`  - /url: /adev/status/1740000000000000000#m`,
	`- text: "Welcome to my profile."`,
	`- text: "0  4  90"`,
	`- link [e20]:`,
	`  - /url: /adev/status/1750000000000000001#m`,
	`- link "Alice Example" [e21]:`,
	`  - /url: /adev`,
	`- link "@adev" [e22]:`,
	`  - /url: /adev`,
	`- link "2h" [e23]:`,
	`  - /url: /adev/status/1750000000000000001#m`,
	`- text: "Just shipped a new feature for Cursor!"`,
	`- link [e24]:`,
	`  - /url: /pic/orig/media%2FGAbc123.jpg`,
	`- link [e25]:`,
	`  - /url: /pic/orig/media%2FGAbc123.jpg`,
	`- text: "3  12  847"`,
	`- link [e30]:`,
	`  - /url: /bob/status/1750000000000000002#m`,
	`- text: "Retweeted"`,
	`- link "Bob Builder" [e31]:`,
	`  - /url: /bob`,
	`- link "@bob" [e32]:`,
	`  - /url: /bob`,
	`- link "5h" [e33]:`,
	`  - /url: /bob/status/1750000000000000002#m`,
	`- text: "Trying out Claude 3.5 Sonnet today. Impressive."`,
	`- text: "1  5  210"`,
	`- link [e40]:`,
	`  - /url: /adev/status/1740000000000000000#m`,
	`- link "Alice Example" [e41]:`,
	`  - /url: /adev`,
	`- link "@adev" [e42]:`,
	`  - /url: /adev`,
	`- text: "Welcome to my profile."`,
	`- text: "0  4  90"`,
}, "\n")

// fallbackSnapshot has no bare anchors; every permalink sits under a
// labeled link.
var fallbackSnapshot = strings.Join([]string{
	`- text: "Just shipped a new feature for Cursor!"`,
	`- text: "3  12  847"`,
	`- link "status" [e1]:`,
	`  - /url: /karpathy/status/1750000000000000001#m`,
	`- text: "Trying out Claude 3.5 Sonnet today. Impressive."`,
	`- text: "1  5  210"`,
	`- link "status" [e2]:`,
	`  - /url: /karpathy/status/1750000000000000002#m`,
}, "\n")

// tocSnapshot only carries a table of contents.
var tocSnapshot = strings.Join([]string{
	`- link [e1]:`,
	`  - /url: /adev/status/1#m`,
	`- link [e2]:`,
	`  - /url: /adev/status/2#m`,
	`- link [e3]:`,
	`  - /url: /adev/status/3#m`,
	`- list:`,
	`  - listitem:`,
}, "\n")
