package server

import (
	"strings"
)

// commandEntry maps one ASCII command prefix to its handler. The match
// is first-hit and order-sensitive; prefixes that take arguments carry
// their trailing space so `lock 5` can't be swallowed by a bare `lo`.
type commandEntry struct {
	prefix string
	fn     func(c *Client, args string)
}

var commandTable = []commandEntry{
	{"nav ", (*Client).cmdNav},
	{"imp ", (*Client).cmdImpulse},
	{"apr ", (*Client).cmdApproach},
	{"jum ", (*Client).cmdJump},
	{"cha", (*Client).cmdChase},
	{"pha ", (*Client).cmdPhaser},
	{"tor", (*Client).cmdTorpedo},
	{"she ", (*Client).cmdShields},
	{"lock ", (*Client).cmdLock},
	{"clo", (*Client).cmdCloak},
	{"bor", (*Client).cmdBoard},
	{"dis", (*Client).cmdDismantle},
	{"min", (*Client).cmdMine},
	{"sco", (*Client).cmdScoop},
	{"har", (*Client).cmdHarvest},
	{"doc", (*Client).cmdDock},
	{"con ", (*Client).cmdConvert},
	{"load ", (*Client).cmdLoad},
	{"rep ", (*Client).cmdRepair},
	{"psy", (*Client).cmdPsy},
	{"xxx", (*Client).cmdSelfDestruct},
	{"enc ", (*Client).cmdEncrypt},
	{"srs", (*Client).cmdShortRangeScan},
	{"lrs", (*Client).cmdLongRangeScan},
	{"sta", (*Client).cmdStatus},
	{"inv", (*Client).cmdInventory},
	{"dam", (*Client).cmdDamageReport},
	{"cal ", (*Client).cmdCalc},
	{"who", (*Client).cmdWho},
	{"aux ", (*Client).cmdAux},
}

// handleCommand dispatches one inbound command line. The whole handler
// runs under the world lock; handlers reply to misuse with a chat line
// and leave state untouched.
func (c *Client) handleCommand(line string) {
	line = strings.TrimRight(line, "\r\n")

	gs := c.server.gs
	gs.Mu.Lock()
	defer gs.Mu.Unlock()

	p := c.player()
	if p == nil {
		c.sendServerMsg("Not logged in.")
		return
	}
	if !p.Active {
		c.sendServerMsg("Your ship is destroyed.")
		return
	}

	for _, e := range commandTable {
		if strings.HasPrefix(line, e.prefix) {
			e.fn(c, strings.TrimSpace(line[len(e.prefix):]))
			return
		}
	}
	c.sendServerMsg("Unknown command: " + line)
}
