package scan

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"easyapply-engine/internal/session"
)

// The platform renders slightly different outer structures depending on
// account and session state. Each strategy is one structural recipe for the
// feed container plus its list element; they are tried in order and the
// first one that resolves both wins. Extending the list never touches call
// sites.
type feedStrategy struct {
	name      string
	container session.Locator
	list      session.Locator
}

var feedStrategies = []feedStrategy{
	{
		name:      "region-a",
		container: session.ByXPath("/html/body/div[6]/div[3]/div[4]/div/div/main/div/div[2]/div[1]/div"),
		list:      session.ByXPath("/html/body/div[6]/div[3]/div[4]/div/div/main/div/div[2]/div[1]/div/ul"),
	},
	{
		name:      "region-b",
		container: session.ByXPath("/html/body/div[5]/div[3]/div[4]/div/div/main/div/div[2]/div[1]/div"),
		list:      session.ByXPath("/html/body/div[5]/div[3]/div[4]/div/div/main/div/div[2]/div[1]/div/ul"),
	},
	{
		name:      "scaffold",
		container: session.ByCSS("div.scaffold-layout__list"),
		list:      session.ByCSS("div.scaffold-layout__list ul"),
	},
}

var errNoFeed = errors.New("scan: no locator strategy resolved the feed")

// resolveFeed returns the feed container, its list element, and the list's
// leading class name, which re-locates the list reliably for extraction.
func resolveFeed(sess session.Session) (session.Element, session.Element, string, error) {
	for _, st := range feedStrategies {
		container, err := sess.Find(st.container)
		if err != nil {
			continue
		}
		list, err := sess.Find(st.list)
		if err != nil {
			continue
		}
		class, err := list.Attribute("class")
		if err != nil {
			continue
		}
		first := strings.Fields(class)
		if len(first) == 0 {
			continue
		}
		log.Printf("[scan] feed resolved via strategy %q, list class %q", st.name, first[0])
		return container, list, first[0], nil
	}
	return nil, nil, "", fmt.Errorf("%w (%d strategies tried)", errNoFeed, len(feedStrategies))
}
