package mpris

import "github.com/Ducheved/sharpmote/media"

type candidate struct {
	busName string
	status  media.PlaybackStatus
}

// pick chooses the session to control: the last playing player if it still plays,
// any playing player, the last player, the first paused player, then the first one.
func pick(players []candidate, last string) (candidate, bool) {
	if len(players) == 0 {
		return candidate{}, false
	}

	if last != "" {
		for _, p := range players {
			if p.busName == last && p.status == media.Playing {
				return p, true
			}
		}
	}

	for _, p := range players {
		if p.status == media.Playing {
			return p, true
		}
	}

	if last != "" {
		for _, p := range players {
			if p.busName == last {
				return p, true
			}
		}
	}

	for _, p := range players {
		if p.status == media.Paused {
			return p, true
		}
	}

	return players[0], true
}
