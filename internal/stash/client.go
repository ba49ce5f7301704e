package stash

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the Stash GraphQL endpoint. Every call is blocking with
// the configured timeout; any transport or GraphQL error is returned to the
// caller, which treats it as fatal for the run.
type Client struct {
	client *resty.Client
	url    string
}

func NewClient(url, apiKey string, timeout time.Duration) *Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetHeader("Content-Type", "application/json")
	c.SetHeader("Accept", "application/json")
	if apiKey != "" {
		c.SetHeader("ApiKey", apiKey)
	}
	return &Client{client: c, url: url}
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) call(query string, variables map[string]interface{}, out interface{}) error {
	payload := map[string]interface{}{"query": query}
	if variables != nil {
		payload["variables"] = variables
	}
	resp, err := c.client.R().SetBody(payload).Post(c.url)
	if err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}
	if resp.StatusCode() == 401 {
		return fmt.Errorf("graphql request unauthorized (check the api key)")
	}
	if resp.IsError() {
		return fmt.Errorf("graphql query failed: %s - %s", resp.Status(), resp.Body())
	}
	var envelope graphQLResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("invalid graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("invalid graphql data: %w", err)
		}
	}
	return nil
}

// nameFilter builds the INCLUDES name (or name-or-alias) filter used by the
// find queries. Exact matching happens client side, on the full result.
func nameFilter(name string, withAliases bool) map[string]interface{} {
	f := map[string]interface{}{
		"name": map[string]interface{}{"value": name, "modifier": "INCLUDES"},
	}
	if withAliases {
		f["OR"] = map[string]interface{}{
			"aliases": map[string]interface{}{"value": name, "modifier": "INCLUDES"},
		}
	}
	return f
}

var allPages = map[string]interface{}{"per_page": -1}

const findSceneQuery = `
query FindScene($id: ID!) {
    findScene(id: $id) {
        id
        title
        details
        date
        url
        director
        rating
        organized
        path
        studio { id name }
        performers { id name }
        tags { id name }
        movies { movie { id name } scene_index }
    }
}`

func (c *Client) FindScene(id string) (*Scene, error) {
	var data struct {
		FindScene *Scene `json:"findScene"`
	}
	err := c.call(findSceneQuery, map[string]interface{}{"id": id}, &data)
	if err != nil {
		return nil, err
	}
	if data.FindScene == nil {
		return nil, fmt.Errorf("scene %s not found", id)
	}
	return data.FindScene, nil
}

const findPerformersQuery = `
query FindPerformers($performer_filter: PerformerFilterType, $filter: FindFilterType) {
    findPerformers(performer_filter: $performer_filter, filter: $filter) {
        performers { id name aliases }
    }
}`

func (c *Client) FindPerformers(name string) ([]Performer, error) {
	var data struct {
		FindPerformers struct {
			Performers []Performer `json:"performers"`
		} `json:"findPerformers"`
	}
	vars := map[string]interface{}{
		"performer_filter": nameFilter(name, true),
		"filter":           allPages,
	}
	if err := c.call(findPerformersQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.FindPerformers.Performers, nil
}

const findStudiosQuery = `
query FindStudios($studio_filter: StudioFilterType, $filter: FindFilterType) {
    findStudios(studio_filter: $studio_filter, filter: $filter) {
        studios { id name aliases }
    }
}`

func (c *Client) FindStudios(name string) ([]Studio, error) {
	var data struct {
		FindStudios struct {
			Studios []Studio `json:"studios"`
		} `json:"findStudios"`
	}
	vars := map[string]interface{}{
		"studio_filter": nameFilter(name, true),
		"filter":        allPages,
	}
	if err := c.call(findStudiosQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.FindStudios.Studios, nil
}

const findTagsQuery = `
query FindTags($tag_filter: TagFilterType, $filter: FindFilterType) {
    findTags(tag_filter: $tag_filter, filter: $filter) {
        tags { id name }
    }
}`

func (c *Client) FindTags(name string) ([]Tag, error) {
	var data struct {
		FindTags struct {
			Tags []Tag `json:"tags"`
		} `json:"findTags"`
	}
	vars := map[string]interface{}{
		"tag_filter": nameFilter(name, false),
		"filter":     allPages,
	}
	if err := c.call(findTagsQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.FindTags.Tags, nil
}

const findMoviesQuery = `
query FindMovies($movie_filter: MovieFilterType, $filter: FindFilterType) {
    findMovies(movie_filter: $movie_filter, filter: $filter) {
        movies { id name }
    }
}`

func (c *Client) FindMovies(name string) ([]Movie, error) {
	var data struct {
		FindMovies struct {
			Movies []Movie `json:"movies"`
		} `json:"findMovies"`
	}
	vars := map[string]interface{}{
		"movie_filter": nameFilter(name, false),
		"filter":       allPages,
	}
	if err := c.call(findMoviesQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.FindMovies.Movies, nil
}

const performerCreateQuery = `
mutation PerformerCreate($input: PerformerCreateInput!) {
    performerCreate(input: $input) { id }
}`

func (c *Client) CreatePerformer(name string) (string, error) {
	var data struct {
		PerformerCreate struct {
			ID string `json:"id"`
		} `json:"performerCreate"`
	}
	vars := map[string]interface{}{"input": map[string]interface{}{"name": name}}
	if err := c.call(performerCreateQuery, vars, &data); err != nil {
		return "", err
	}
	return data.PerformerCreate.ID, nil
}

const studioCreateQuery = `
mutation StudioCreate($input: StudioCreateInput!) {
    studioCreate(input: $input) { id }
}`

func (c *Client) CreateStudio(name string) (string, error) {
	var data struct {
		StudioCreate struct {
			ID string `json:"id"`
		} `json:"studioCreate"`
	}
	vars := map[string]interface{}{"input": map[string]interface{}{"name": name}}
	if err := c.call(studioCreateQuery, vars, &data); err != nil {
		return "", err
	}
	return data.StudioCreate.ID, nil
}

const tagCreateQuery = `
mutation TagCreate($input: TagCreateInput!) {
    tagCreate(input: $input) { id }
}`

func (c *Client) CreateTag(name string) (string, error) {
	var data struct {
		TagCreate struct {
			ID string `json:"id"`
		} `json:"tagCreate"`
	}
	vars := map[string]interface{}{"input": map[string]interface{}{"name": name}}
	if err := c.call(tagCreateQuery, vars, &data); err != nil {
		return "", err
	}
	return data.TagCreate.ID, nil
}

const movieCreateQuery = `
mutation MovieCreate($input: MovieCreateInput!) {
    movieCreate(input: $input) { id }
}`

// CreateMovie needs a studio and a date, the catalog requires both on
// movie creation.
func (c *Client) CreateMovie(name, studioID, date string) (string, error) {
	var data struct {
		MovieCreate struct {
			ID string `json:"id"`
		} `json:"movieCreate"`
	}
	input := map[string]interface{}{"name": name}
	if studioID != "" {
		input["studio_id"] = studioID
	}
	if date != "" {
		input["date"] = date
	}
	vars := map[string]interface{}{"input": input}
	if err := c.call(movieCreateQuery, vars, &data); err != nil {
		return "", err
	}
	return data.MovieCreate.ID, nil
}

const sceneUpdateQuery = `
mutation SceneUpdate($input: SceneUpdateInput!) {
    sceneUpdate(input: $input) { id }
}`

func (c *Client) UpdateScene(input *SceneUpdateInput) (string, error) {
	var data struct {
		SceneUpdate struct {
			ID string `json:"id"`
		} `json:"sceneUpdate"`
	}
	if err := c.call(sceneUpdateQuery, map[string]interface{}{"input": input}, &data); err != nil {
		return "", err
	}
	return data.SceneUpdate.ID, nil
}
