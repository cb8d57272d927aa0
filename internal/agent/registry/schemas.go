package registry

// Constructors to keep the widget table readable.

func str(desc string) *FieldSpec     { return &FieldSpec{Type: FieldString, Desc: desc} }
func integer(desc string) *FieldSpec { return &FieldSpec{Type: FieldInteger, Desc: desc} }
func arr(items *FieldSpec) *FieldSpec {
	return &FieldSpec{Type: FieldArray, Items: items}
}
func obj(props map[string]*FieldSpec, required ...string) *FieldSpec {
	return &FieldSpec{Type: FieldObject, Properties: props, Required: required}
}
func enum(desc string, values ...string) *FieldSpec {
	return &FieldSpec{Type: FieldString, Desc: desc, Enum: values}
}

func h2hSide() *FieldSpec {
	return obj(map[string]*FieldSpec{
		"name":          str("Team name"),
		"wins":          integer(""),
		"draws":         integer(""),
		"losses":        integer(""),
		"goals_for":     integer(""),
		"goals_against": integer(""),
	}, "name")
}

func lineupSide() *FieldSpec {
	player := obj(map[string]*FieldSpec{
		"player_name":   str(""),
		"jersey_number": integer(""),
		"position":      str(""),
	}, "player_name")
	return obj(map[string]*FieldSpec{
		"name":        str("Team name"),
		"formation":   str("e.g. 4-3-3"),
		"manager":     str(""),
		"starting_xi": arr(player),
		"substitutes": arr(player),
	}, "name", "starting_xi")
}

func newsArticles() *FieldSpec {
	return arr(obj(map[string]*FieldSpec{
		"title":          str(""),
		"source_name":    str("Publication name, never a link"),
		"published_date": str("ISO 8601 date-time"),
		"summary":        str(""),
	}, "title", "source_name", "published_date"))
}

// widgetSpecs is the full catalog of UI widgets the dispatch model may
// populate. One record per widget: name, selection description, component
// tag and parameter tree.
var widgetSpecs = []ToolSpec{
	{
		Name:      "present_h2h_comparison",
		Desc:      "Presents a head-to-head comparison between two teams.",
		Component: "h2h_comparison_table",
		Params: map[string]*FieldSpec{
			"h2h_summary": obj(map[string]*FieldSpec{
				"team1":         h2hSide(),
				"team2":         h2hSide(),
				"total_matches": integer(""),
			}, "team1", "team2"),
			"recent_meetings": arr(obj(map[string]*FieldSpec{
				"date":        str("Match date"),
				"score":       str("e.g. 2-1"),
				"competition": str(""),
			}, "date", "score")),
		},
		Required: []string{"h2h_summary"},
	},
	{
		Name:      "display_standings_table",
		Desc:      "Displays a league standings table.",
		Component: "standings_table",
		Params: map[string]*FieldSpec{
			"league_name": str(""),
			"season":      str(""),
			"standings": arr(obj(map[string]*FieldSpec{
				"rank":            integer(""),
				"team_name":       str(""),
				"played":          integer(""),
				"wins":            integer(""),
				"draws":           integer(""),
				"losses":          integer(""),
				"goals_for":       integer(""),
				"goals_against":   integer(""),
				"goal_difference": integer(""),
				"points":          integer(""),
				"form":            str("Recent form string, e.g. WWDLW"),
			}, "rank", "team_name", "played", "points")),
		},
		Required: []string{"league_name", "standings"},
	},
	{
		Name:      "show_match_schedule",
		Desc:      "Shows a schedule of upcoming matches.",
		Component: "match_schedule_table",
		Params: map[string]*FieldSpec{
			"title":     str(""),
			"headers":   arr(str("")),
			"rows":      arr(arr(str(""))),
			"sort_info": str(""),
		},
		Required: []string{"headers", "rows"},
	},
	{
		Name:      "list_match_results",
		Desc:      "Lists recent match results.",
		Component: "results_list",
		Params: map[string]*FieldSpec{
			"matches": arr(obj(map[string]*FieldSpec{
				"date":           str(""),
				"time":           str(""),
				"competition":    str(""),
				"round":          str(""),
				"home_team_name": str(""),
				"away_team_name": str(""),
				"score": obj(map[string]*FieldSpec{
					"fulltime": obj(map[string]*FieldSpec{
						"home": integer(""),
						"away": integer(""),
					}),
					"halftime": obj(map[string]*FieldSpec{
						"home": integer(""),
						"away": integer(""),
					}),
				}, "fulltime"),
				"status": str("e.g. FT, AET, postponed"),
			}, "date", "home_team_name", "away_team_name", "score", "status")),
		},
		Required: []string{"matches"},
	},
	{
		Name:      "provide_team_statistics",
		Desc:      "Provides statistics for a team or a general statistical overview.",
		Component: "team_stats",
		Params: map[string]*FieldSpec{
			"stats_type": str("Kind of statistics presented"),
			"title":      str(""),
			"sections": arr(obj(map[string]*FieldSpec{
				"section_title": str(""),
				"key_value_pairs": obj(map[string]*FieldSpec{
					"stat_name":  str(""),
					"stat_value": str(""),
				}),
			}, "section_title")),
			"narrative_summary": str(""),
		},
		Required: []string{"stats_type", "title"},
	},
	{
		Name:      "offer_suggestion",
		Desc:      "Offers a suggestion or prediction based on data.",
		Component: "suggestion_card",
		Params: map[string]*FieldSpec{
			"title":            str(""),
			"details":          str(""),
			"key_points":       arr(str("")),
			"confidence_level": str(""),
			"disclaimer":       str("Defaults to a statistical-analysis disclaimer"),
		},
		Required: []string{"title", "details"},
	},
	{
		Name:      "analyze_percentage",
		Desc:      "Provides an analysis for a percentage-based query.",
		Component: "percentage_card",
		Params: map[string]*FieldSpec{
			"title":   str(""),
			"value":   str("Percentage string, e.g. 63.5%"),
			"context": str(""),
			"basis":   str("What the percentage is computed over"),
			"supporting_stats": obj(map[string]*FieldSpec{
				"stat_name":  str(""),
				"stat_value": str(""),
			}),
		},
		Required: []string{"title", "value", "context"},
	},
	{
		Name:      "get_live_match_details",
		Desc:      "Provides real-time details for an ongoing match.",
		Component: "live_match_feed",
		Params: map[string]*FieldSpec{
			"match_id":           str(""),
			"competition":        str(""),
			"home_team_name":     str(""),
			"away_team_name":     str(""),
			"home_team_score":    integer(""),
			"away_team_score":    integer(""),
			"current_minute":     str(""),
			"status_description": str(""),
			"key_events": arr(obj(map[string]*FieldSpec{
				"minute":      str(""),
				"type":        enum("", "goal", "yellow_card", "red_card", "substitution", "var_decision"),
				"player_name": str(""),
				"team_name":   str(""),
				"detail":      str(""),
			}, "minute", "type", "team_name")),
			"live_stats": obj(map[string]*FieldSpec{
				"home_possession":      integer(""),
				"away_possession":      integer(""),
				"home_shots":           integer(""),
				"away_shots":           integer(""),
				"home_shots_on_target": integer(""),
				"away_shots_on_target": integer(""),
				"home_corners":         integer(""),
				"away_corners":         integer(""),
			}),
		},
		Required: []string{
			"competition", "home_team_name", "away_team_name",
			"home_team_score", "away_team_score", "current_minute", "status_description",
		},
	},
	{
		Name:      "get_match_lineups",
		Desc:      "Provides starting lineups and substitutes for a match.",
		Component: "match_lineups_display",
		Params: map[string]*FieldSpec{
			"match_description": str("e.g. Arsenal vs Chelsea, Premier League"),
			"home_team":         lineupSide(),
			"away_team":         lineupSide(),
		},
		Required: []string{"match_description", "home_team", "away_team"},
	},
	{
		Name:      "get_top_performers",
		Desc:      "Lists top performing players (e.g. scorers, assists) for a league or tournament.",
		Component: "top_performers_list",
		Params: map[string]*FieldSpec{
			"league_name":    str(""),
			"season":         str(""),
			"statistic_type": str("e.g. goals, assists, clean sheets"),
			"performers": arr(obj(map[string]*FieldSpec{
				"rank":        integer(""),
				"player_name": str(""),
				"team_name":   str(""),
				"value":       str(""),
				"nationality": str(""),
			}, "rank", "player_name", "team_name", "value")),
		},
		Required: []string{"league_name", "statistic_type", "performers"},
	},
	{
		Name:      "get_player_profile",
		Desc:      "Retrieves detailed information about a sports player.",
		Component: "player_profile_card",
		Params: map[string]*FieldSpec{
			"full_name":           str(""),
			"common_name":         str(""),
			"nationality":         str(""),
			"date_of_birth":       str("ISO 8601 date"),
			"age":                 integer(""),
			"primary_position":    str(""),
			"secondary_positions": arr(str("")),
			"current_club_name":   str(""),
			"jersey_number":       integer(""),
			"height_cm":           integer(""),
			"weight_kg":           integer(""),
			"preferred_foot":      enum("", "Right", "Left", "Both"),
			"career_summary_stats": obj(map[string]*FieldSpec{
				"appearances": integer(""),
				"goals":       integer(""),
				"assists":     integer(""),
			}),
			"market_value": str(""),
		},
		Required: []string{"full_name", "nationality", "date_of_birth", "primary_position"},
	},
	{
		Name:      "compare_players",
		Desc:      "Provides a side-by-side statistical comparison of players.",
		Component: "player_comparison_view",
		Params: map[string]*FieldSpec{
			"comparison_title": str(""),
			"players": arr(obj(map[string]*FieldSpec{
				"player_name": str(""),
				"team_name":   str(""),
				"stats": obj(map[string]*FieldSpec{
					"stat_name":  str(""),
					"stat_value": str(""),
				}),
			}, "player_name", "stats")),
			"comparison_period": str("e.g. 2024/25 season"),
		},
		Required: []string{"comparison_title", "players"},
	},
	{
		Name:      "clarify_sports_term",
		Desc:      "Explains a specific sports term, rule, or concept.",
		Component: "term_explanation_box",
		Params: map[string]*FieldSpec{
			"term":          str(""),
			"explanation":   str(""),
			"sport":         str(""),
			"related_terms": arr(str("")),
		},
		Required: []string{"term", "explanation"},
	},
	{
		Name:      "get_team_news",
		Desc:      "Fetches latest news summaries for a specific team.",
		Component: "news_article_list",
		Params: map[string]*FieldSpec{
			"team_name":     str(""),
			"news_articles": newsArticles(),
		},
		Required: []string{"team_name", "news_articles"},
	},
	{
		Name:      "get_league_news",
		Desc:      "Fetches latest news summaries for a specific league.",
		Component: "news_article_list",
		Params: map[string]*FieldSpec{
			"league_name":   str(""),
			"news_articles": newsArticles(),
		},
		Required: []string{"league_name", "news_articles"},
	},
}
