package api

import "encoding/json"

const characterFields = `
      id
      name
      classID
      server {
        name
        slug
        region {
          slug
        }
      }
      zoneRankings`

const characterByNameQuery = `query CharacterByName($name: String!, $serverSlug: String!, $serverRegion: String!) {
  characterData {
    character(name: $name, serverSlug: $serverSlug, serverRegion: $serverRegion) {` + characterFields + `
    }
  }
}`

const characterByIDQuery = `query CharacterByID($id: Int!) {
  characterData {
    character(id: $id) {` + characterFields + `
    }
  }
}`

const zoneEncountersQuery = `query ZoneEncounters($zoneId: Int!) {
  worldData {
    zone(id: $zoneId) {
      id
      name
      encounters {
        id
        name
      }
    }
  }
}`

// One aliased zoneRankings per difficulty so that a single request covers
// the whole tier.
const zoneProgressionQuery = `query ZoneProgression($name: String!, $serverSlug: String!, $serverRegion: String!, $zoneId: Int!) {
  characterData {
    character(name: $name, serverSlug: $serverSlug, serverRegion: $serverRegion) {
      normal: zoneRankings(zoneID: $zoneId, difficulty: 3)
      heroic: zoneRankings(zoneID: $zoneId, difficulty: 4)
      mythic: zoneRankings(zoneID: $zoneId, difficulty: 5)
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type characterData struct {
	CharacterData struct {
		Character *rawCharacter `json:"character"`
	} `json:"characterData"`
}

type rawCharacter struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	ClassID int    `json:"classID"`
	Server  struct {
		Name   string `json:"name"`
		Slug   string `json:"slug"`
		Region struct {
			Slug string `json:"slug"`
		} `json:"region"`
	} `json:"server"`
	// JSON scalar: one zone payload or a list of them
	ZoneRankings json.RawMessage `json:"zoneRankings"`
}

type zoneRankingPayload struct {
	Zone       int            `json:"zone"`
	Difficulty int            `json:"difficulty"`
	Rankings   []rankingEntry `json:"rankings"`
	Error      string         `json:"error,omitempty"`
}

type rankingEntry struct {
	Encounter struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"encounter"`
	RankPercent *float64 `json:"rankPercent"`
	TotalKills  int      `json:"totalKills"`
	Spec        string   `json:"spec"`
	BestSpec    string   `json:"bestSpec"`
}

type worldData struct {
	WorldData struct {
		Zone *struct {
			ID         int    `json:"id"`
			Name       string `json:"name"`
			Encounters []struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"encounters"`
		} `json:"zone"`
	} `json:"worldData"`
}

type progressionData struct {
	CharacterData struct {
		Character *struct {
			Normal json.RawMessage `json:"normal"`
			Heroic json.RawMessage `json:"heroic"`
			Mythic json.RawMessage `json:"mythic"`
		} `json:"character"`
	} `json:"characterData"`
}
