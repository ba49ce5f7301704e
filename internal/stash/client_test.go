package stash

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// graphQLServer answers every request with the given handler and keeps the
// decoded requests for inspection.
func graphQLServer(t *testing.T, handle func(req graphQLRequest) (int, string)) (*Client, *[]graphQLRequest) {
	t.Helper()
	var requests []graphQLRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		requests = append(requests, req)
		status, body := handle(req)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second), &requests
}

func TestFindScene(t *testing.T) {
	client, requests := graphQLServer(t, func(req graphQLRequest) (int, string) {
		return 200, `{"data":{"findScene":{
            "id":"42","title":"A Scene","organized":false,
            "path":"/media/a.mp4",
            "studio":{"id":"3","name":"ABC"},
            "performers":[{"id":"7","name":"Anna Smith"}],
            "movies":[{"movie":{"id":"9","name":"Series"},"scene_index":2}]
        }}}`
	})
	scene, err := client.FindScene("42")
	if err != nil {
		t.Fatal(err)
	}
	if scene.ID != "42" || scene.Title != "A Scene" || scene.Path != "/media/a.mp4" {
		t.Errorf("scene fields: %+v", scene)
	}
	if scene.Studio == nil || scene.Studio.ID != "3" {
		t.Errorf("studio: %+v", scene.Studio)
	}
	if len(scene.Movies) != 1 || scene.Movies[0].SceneIndex != 2 {
		t.Errorf("movies: %+v", scene.Movies)
	}
	if (*requests)[0].Variables["id"] != "42" {
		t.Errorf("id variable: %v", (*requests)[0].Variables)
	}
}

func TestFindSceneMissing(t *testing.T) {
	client, _ := graphQLServer(t, func(req graphQLRequest) (int, string) {
		return 200, `{"data":{"findScene":null}}`
	})
	if _, err := client.FindScene("999"); err == nil {
		t.Error("expected an error for an unknown scene")
	}
}

func TestFindPerformersFilter(t *testing.T) {
	client, requests := graphQLServer(t, func(req graphQLRequest) (int, string) {
		return 200, `{"data":{"findPerformers":{"performers":[
            {"id":"1","name":"Anna Smith","aliases":"A. Smith, Annie"}
        ]}}}`
	})
	performers, err := client.FindPerformers("Anna Smith")
	if err != nil {
		t.Fatal(err)
	}
	if len(performers) != 1 || performers[0].Aliases != "A. Smith, Annie" {
		t.Errorf("performers: %+v", performers)
	}
	filter := (*requests)[0].Variables["performer_filter"].(map[string]interface{})
	name := filter["name"].(map[string]interface{})
	if name["value"] != "Anna Smith" || name["modifier"] != "INCLUDES" {
		t.Errorf("name filter: %v", name)
	}
	if _, ok := filter["OR"]; !ok {
		t.Error("performer search must include the alias branch")
	}
	page := (*requests)[0].Variables["filter"].(map[string]interface{})
	if page["per_page"] != float64(-1) {
		t.Errorf("expected unpaged query, got %v", page)
	}
}

func TestFindTagsHasNoAliasBranch(t *testing.T) {
	client, requests := graphQLServer(t, func(req graphQLRequest) (int, string) {
		return 200, `{"data":{"findTags":{"tags":[]}}}`
	})
	if _, err := client.FindTags("outdoor"); err != nil {
		t.Fatal(err)
	}
	filter := (*requests)[0].Variables["tag_filter"].(map[string]interface{})
	if _, ok := filter["OR"]; ok {
		t.Error("tags have no aliases, filter must not carry an OR branch")
	}
}

func TestCreateMovieInput(t *testing.T) {
	client, requests := graphQLServer(t, func(req graphQLRequest) (int, string) {
		return 200, `{"data":{"movieCreate":{"id":"m1"}}}`
	})
	id, err := client.CreateMovie("Series", "s1", "2020-05-06")
	if err != nil {
		t.Fatal(err)
	}
	if id != "m1" {
		t.Errorf("id: %s", id)
	}
	input := (*requests)[0].Variables["input"].(map[string]interface{})
	if input["name"] != "Series" || input["studio_id"] != "s1" || input["date"] != "2020-05-06" {
		t.Errorf("movie input: %v", input)
	}
}

func TestCreateMovieOmitsEmptyFields(t *testing.T) {
	client, requests := graphQLServer(t, func(req graphQLRequest) (int, string) {
		return 200, `{"data":{"movieCreate":{"id":"m1"}}}`
	})
	if _, err := client.CreateMovie("Series", "", ""); err != nil {
		t.Fatal(err)
	}
	input := (*requests)[0].Variables["input"].(map[string]interface{})
	if _, ok := input["studio_id"]; ok {
		t.Error("empty studio must be omitted")
	}
	if _, ok := input["date"]; ok {
		t.Error("empty date must be omitted")
	}
}

func TestGraphQLErrorEnvelope(t *testing.T) {
	client, _ := graphQLServer(t, func(req graphQLRequest) (int, string) {
		return 200, `{"errors":[{"message":"must be unique"}]}`
	})
	_, err := client.CreateTag("dup")
	if err == nil || !strings.Contains(err.Error(), "must be unique") {
		t.Errorf("expected graphql error to surface, got %v", err)
	}
}

func TestUnauthorized(t *testing.T) {
	client, _ := graphQLServer(t, func(req graphQLRequest) (int, string) {
		return 401, `{}`
	})
	_, err := client.FindScene("1")
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestUpdateScene(t *testing.T) {
	client, requests := graphQLServer(t, func(req graphQLRequest) (int, string) {
		return 200, `{"data":{"sceneUpdate":{"id":"42"}}}`
	})
	title := "New Title"
	organized := true
	id, err := client.UpdateScene(&SceneUpdateInput{
		ID:           "42",
		Title:        &title,
		PerformerIDs: []string{"p1", "p2"},
		Organized:    &organized,
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != "42" {
		t.Errorf("id: %s", id)
	}
	input := (*requests)[0].Variables["input"].(map[string]interface{})
	if input["title"] != "New Title" || input["organized"] != true {
		t.Errorf("update input: %v", input)
	}
	if _, ok := input["details"]; ok {
		t.Error("unset scalars must be omitted from the mutation input")
	}
}
