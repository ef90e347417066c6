package sheetsync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var errNotFound = errors.New("resource not found")

// restDirectory is an IDirectory over the directory service's REST API:
// a paginated Users collection with bearer-token auth.
type restDirectory struct {
	baseUrl string
	token   string
	client  *http.Client
}

// NewRestDirectory creates an IDirectory for a directory service endpoint.
// baseUrl: the API root, e.g. "https://example.com/api/directory/v1/"
// token: bearer token with user read/write scope
func NewRestDirectory(baseUrl string, token string) IDirectory {
	return &restDirectory{
		baseUrl: baseUrl,
		token:   token,
		client:  http.DefaultClient,
	}
}

func parseUserResource(userObject map[string]any) (result *UserRecord) {
	var ok bool
	var userId int64
	var login string
	if userId, ok = toInt64(userObject["id"]); ok {
		login, ok = toString(userObject["userName"])
	}
	if !ok {
		return
	}
	result = new(UserRecord)
	result.ID = userId
	result.Login = login
	result.Email, _ = toString(userObject["email"])
	var j any
	var jo map[string]any
	if j = userObject["name"]; j != nil {
		if jo, ok = j.(map[string]any); ok {
			result.FirstName, _ = toString(jo["givenName"])
			result.LastName, _ = toString(jo["familyName"])
		}
	}
	if j = userObject["roles"]; j != nil {
		var ja []any
		if ja, ok = j.([]any); ok {
			for _, j = range ja {
				var role string
				if role, ok = toString(j); ok {
					result.Roles = append(result.Roles, role)
				}
			}
		}
	}
	if j = userObject["metadata"]; j != nil {
		if jo, ok = j.(map[string]any); ok {
			result.Meta = make(map[string]string, len(jo))
			for k, v := range jo {
				if s, ok := toString(v); ok {
					result.Meta[k] = s
				}
			}
		}
	}
	return
}

func (d *restDirectory) UserByID(id int64) (user *UserRecord, err error) {
	var resource map[string]any
	if resource, err = d.getResource("Users", strconv.FormatInt(id, 10)); err != nil {
		if errors.Is(err, errNotFound) {
			err = nil
		}
		return
	}
	user = parseUserResource(resource)
	return
}

func (d *restDirectory) UserByEmail(email string) (user *UserRecord, err error) {
	var query = url.Values{}
	query.Set("filter", fmt.Sprintf("email eq %q", email))
	err = d.getResources("Users", query, func(ro map[string]any) {
		if user == nil {
			user = parseUserResource(ro)
		}
	})
	return
}

func (d *restDirectory) Users() (users []*UserRecord, err error) {
	err = d.getResources("Users", nil, func(ro map[string]any) {
		if u := parseUserResource(ro); u != nil {
			users = append(users, u)
		}
	})
	return
}

func (d *restDirectory) CreateUser(user *UserRecord, password string) (id int64, err error) {
	var payload = map[string]any{
		"userName": user.Login,
		"email":    user.Email,
		"name": map[string]any{
			"givenName":  user.FirstName,
			"familyName": user.LastName,
		},
		"roles":    user.Roles,
		"password": password,
	}
	var resource map[string]any
	if resource, err = d.postResource("Users", payload); err != nil {
		return
	}
	var ok bool
	if id, ok = toInt64(resource["id"]); !ok {
		err = fmt.Errorf("create user %q: response carries no id", user.Email)
	}
	return
}

func (d *restDirectory) UpdateUser(id int64, update UserUpdate) (err error) {
	var payload = map[string]any{
		"userName": update.Login,
		"email":    update.Email,
	}
	var name = map[string]any{}
	if update.HasFirstName {
		name["givenName"] = update.FirstName
	}
	if update.HasLastName {
		name["familyName"] = update.LastName
	}
	if len(name) > 0 {
		payload["name"] = name
	}
	return d.patchResource("Users", strconv.FormatInt(id, 10), payload)
}

func (d *restDirectory) SetRole(id int64, role string) (err error) {
	return d.patchResource("Users", strconv.FormatInt(id, 10), map[string]any{
		"roles": []string{role},
	})
}

func (d *restDirectory) SetMeta(id int64, key string, value string) (err error) {
	return d.patchResource("Users", strconv.FormatInt(id, 10), map[string]any{
		"metadata": map[string]string{key: value},
	})
}

func (d *restDirectory) composeUrl(paths ...string) (result *url.URL, err error) {
	var uri *url.URL
	if uri, err = url.Parse(d.baseUrl); err != nil {
		return
	}
	var ruri *url.URL
	for _, path := range paths {
		if ruri, err = url.Parse(path); err != nil {
			return
		}
		if !strings.HasSuffix(uri.Path, "/") {
			uri.Path += "/"
		}
		uri = uri.ResolveReference(ruri)
	}

	result = uri
	return
}

func (d *restDirectory) executeRequest(rq *http.Request) (response map[string]any, err error) {
	var rs *http.Response
	if rs, err = d.client.Do(rq); err != nil {
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, rs.Body)
		_ = rs.Body.Close()
	}()
	var body []byte
	var contentType = rs.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/") {
		if body, err = io.ReadAll(rs.Body); err != nil {
			return
		}
	}
	if rs.StatusCode == http.StatusNotFound {
		err = errNotFound
		return
	}
	if rs.StatusCode >= 300 {
		var apiUrl = rq.URL.String()
		if strings.HasPrefix(apiUrl, d.baseUrl) {
			apiUrl = strings.Trim(apiUrl[len(d.baseUrl):], "/")
		}
		if len(body) > 0 {
			err = fmt.Errorf("%s directory \"%s\" error: %s", rq.Method, apiUrl, string(body))
		} else {
			err = fmt.Errorf("%s directory \"%s\" error: Status code %d", rq.Method, apiUrl, rs.StatusCode)
		}
		return
	}
	if (rs.StatusCode == 200 || rs.StatusCode == 201) && len(body) > 0 {
		err = json.Unmarshal(body, &response)
	}
	return
}

func (d *restDirectory) getResource(resourceType string, resourceId string) (resource map[string]any, err error) {
	var uri *url.URL
	if uri, err = d.composeUrl(resourceType, resourceId); err != nil {
		return
	}
	var rq *http.Request
	if rq, err = http.NewRequest("GET", uri.String(), nil); err != nil {
		return
	}
	rq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", d.token))
	return d.executeRequest(rq)
}

func (d *restDirectory) postResource(resourceType string, payload any) (resource map[string]any, err error) {
	var uri *url.URL
	if uri, err = d.composeUrl(resourceType); err != nil {
		return
	}

	var data []byte
	if data, err = json.Marshal(payload); err != nil {
		return
	}

	var rq *http.Request
	if rq, err = http.NewRequest("POST", uri.String(), bytes.NewBuffer(data)); err != nil {
		return
	}
	rq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", d.token))
	rq.Header.Add("Content-Type", "application/json")

	resource, err = d.executeRequest(rq)
	return
}

func (d *restDirectory) patchResource(resourceType string, resourceId string, payload any) (err error) {
	var uri *url.URL
	if uri, err = d.composeUrl(resourceType, resourceId); err != nil {
		return
	}

	var data []byte
	if data, err = json.Marshal(payload); err != nil {
		return
	}

	var rq *http.Request
	if rq, err = http.NewRequest("PATCH", uri.String(), bytes.NewBuffer(data)); err != nil {
		return
	}
	rq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", d.token))
	rq.Header.Add("Content-Type", "application/json")

	_, err = d.executeRequest(rq)
	return
}

// getResources pages through a collection in the directory's list format
// (startIndex/count/totalResults).
func (d *restDirectory) getResources(resourceType string, query url.Values, cb func(map[string]any)) (err error) {
	var uri *url.URL
	if uri, err = d.composeUrl(resourceType); err != nil {
		return
	}

	var startIndex int64 = 1
	var count = 500
	var attempt = 0
	for {
		attempt += 1
		if attempt > 20 {
			err = fmt.Errorf("get directory resource \"%s\" canceled", resourceType)
			return
		}
		var ruri = new(url.URL)
		*ruri = *uri
		var q = url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("startIndex", strconv.FormatInt(startIndex, 10))
		q.Set("count", strconv.Itoa(count))
		ruri.RawQuery = q.Encode()

		var rq *http.Request
		if rq, err = http.NewRequest("GET", ruri.String(), nil); err != nil {
			return
		}
		rq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", d.token))

		var jo map[string]any
		if jo, err = d.executeRequest(rq); err != nil {
			return
		}
		var j any
		var ok bool
		if j, ok = jo["Resources"]; ok {
			var jr []any
			if jr, ok = j.([]any); ok {
				for _, j = range jr {
					var jor map[string]any
					if jor, ok = j.(map[string]any); ok {
						cb(jor)
					}
				}
			}
		}
		var itemsPerPage int64 = 0
		if itemsPerPage, ok = toInt64(jo["itemsPerPage"]); !ok {
			err = fmt.Errorf("directory response missing \"itemsPerPage\"")
			return
		}
		if startIndex, ok = toInt64(jo["startIndex"]); !ok {
			err = fmt.Errorf("directory response missing \"startIndex\"")
			return
		}
		startIndex += itemsPerPage

		var totalResults int64 = 0
		if totalResults, ok = toInt64(jo["totalResults"]); !ok {
			err = fmt.Errorf("directory response missing \"totalResults\"")
			return
		}
		// startIndex is 1-based, so the item at startIndex itself is still
		// unread; only strictly past the total is the collection exhausted.
		if startIndex > totalResults {
			return
		}
	}
}
