package handlers

import (
	"encoding/json"
	"net/http"
)

func queryParam(name, description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      schema,
	}
}

func jsonResponse(description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the Movie Explorer API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	dateSchema := map[string]interface{}{"type": "string", "format": "date"}
	badRequest := jsonResponse("Malformed or invalid filter criteria", ref("ErrorResponse"))

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Movie Explorer API",
			"description": "Filter a movie catalog by critic score, Oscars won and release date, and get the score-over-time and Oscars distribution series",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/options": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get filter options",
					"description": "Legal values of each filter control, derived once when the catalog is loaded, plus the default criteria",
					"responses": map[string]interface{}{
						"200": jsonResponse("Filter options", ref("Options")),
					},
				},
			},
			"/api/views": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Compute views",
					"description": "Apply the filter criteria and return both series. Omitted parameters take their default value.",
					"parameters": []map[string]interface{}{
						queryParam("min_score", "Minimum Metacritic score (inclusive)", map[string]interface{}{"type": "number"}),
						queryParam("min_oscars", "Minimum number of Oscars won (inclusive)", map[string]interface{}{"type": "integer"}),
						queryParam("start_date", "Release date range start (YYYY-MM-DD, inclusive)", dateSchema),
						queryParam("end_date", "Release date range end (YYYY-MM-DD, inclusive)", dateSchema),
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("Score series and Oscars distribution", ref("Views")),
						"400": badRequest,
					},
				},
			},
			"/api/movies": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List movies",
					"description": "Paginated listing of the normalized catalog in release order",
					"parameters": []map[string]interface{}{
						queryParam("page", "Page number (default: 1)", map[string]interface{}{"type": "integer", "default": 1}),
						queryParam("limit", "Records per page (default: 100, max: 1000)", map[string]interface{}{"type": "integer", "default": defaultPageLimit}),
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("Page of movies", map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"data":        map[string]interface{}{"type": "array", "items": ref("Movie")},
								"total":       map[string]string{"type": "integer"},
								"page":        map[string]string{"type": "integer"},
								"limit":       map[string]string{"type": "integer"},
								"total_pages": map[string]string{"type": "integer"},
							},
						}),
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API is running and which catalog it serves",
					"responses": map[string]interface{}{
						"200": jsonResponse("API is healthy", map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"status":    map[string]string{"type": "string"},
								"source":    map[string]string{"type": "string"},
								"records":   map[string]string{"type": "integer"},
								"loaded_at": map[string]string{"type": "string", "format": "date-time"},
							},
						}),
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Criteria": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"min_score":  map[string]string{"type": "number"},
						"min_oscars": map[string]string{"type": "integer"},
						"start_date": dateSchema,
						"end_date":   dateSchema,
					},
				},
				"Options": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"score_options": map[string]interface{}{"type": "array", "items": map[string]string{"type": "number"}},
						"oscar_options": map[string]interface{}{"type": "array", "items": map[string]string{"type": "integer"}},
						"date_min":      dateSchema,
						"date_max":      dateSchema,
						"defaults":      ref("Criteria"),
					},
				},
				"Figure": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"title":  map[string]string{"type": "string"},
						"x_axis": map[string]string{"type": "string"},
						"y_axis": map[string]string{"type": "string"},
					},
				},
				"Views": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"criteria": ref("Criteria"),
						"score_series": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"release_date":     map[string]string{"type": "string", "format": "date-time"},
									"metacritic_score": map[string]string{"type": "number"},
									"title":            map[string]string{"type": "string"},
								},
							},
						},
						"oscar_series": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"oscars_won": map[string]interface{}{"type": "array", "items": map[string]string{"type": "integer"}},
								"count":      map[string]interface{}{"type": "array", "items": map[string]string{"type": "integer"}},
							},
						},
						"figures": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"score": ref("Figure"),
								"oscar": ref("Figure"),
							},
						},
					},
				},
				"Movie": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"title":            map[string]string{"type": "string"},
						"release_year":     map[string]string{"type": "integer"},
						"release_date":     map[string]string{"type": "string", "format": "date-time"},
						"metacritic_score": map[string]interface{}{"type": "number", "nullable": true},
						"oscars_won":       map[string]string{"type": "integer"},
					},
				},
				"ErrorResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(spec)
}
