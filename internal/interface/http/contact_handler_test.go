package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const contactJSON = `{"first_name":"Alice","last_name":"Anderson","email":"alice@contacts.example.com","phone_number":"+1-555-0100","birthday":"1990-05-05"}`

func createContact(t *testing.T, env *testEnv, token, payload string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/contacts", token, payload)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	return data["id"].(string)
}

func TestContactsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/contacts"},
		{http.MethodPost, "/api/contacts"},
		{http.MethodGet, "/api/contacts/some-id"},
		{http.MethodGet, "/api/contacts/birthday"},
		{http.MethodGet, "/api/contacts/search"},
	} {
		w := env.do(t, route.method, route.path, "", "")
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestCreateAndGetContact(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createConfirmedUser(t, "owner@example.com", "password123")

	id := createContact(t, env, token, contactJSON)

	w := env.do(t, http.MethodGet, "/api/contacts/"+id, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	require.Equal(t, "Alice", data["first_name"])
	require.Equal(t, "1990-05-05", data["birthday"])
}

func TestCreateContactValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createConfirmedUser(t, "owner@example.com", "password123")

	// Missing required fields
	w := env.do(t, http.MethodPost, "/api/contacts", token, `{"first_name":"Alice"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed birthday
	w = env.do(t, http.MethodPost, "/api/contacts", token, `{"first_name":"A","last_name":"B","email":"a@b.com","phone_number":"1","birthday":"05/05/1990"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactCrossTenantIs404(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.createConfirmedUser(t, "owner@example.com", "password123")
	_, otherToken := env.createConfirmedUser(t, "other@example.com", "password123")

	id := createContact(t, env, ownerToken, contactJSON)

	w := env.do(t, http.MethodGet, "/api/contacts/"+id, otherToken, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPut, "/api/contacts/"+id, otherToken, contactJSON)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, "/api/contacts/"+id, otherToken, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// Owner still sees it.
	w = env.do(t, http.MethodGet, "/api/contacts/"+id, ownerToken, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateContactOverwrites(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createConfirmedUser(t, "owner@example.com", "password123")
	id := createContact(t, env, token, contactJSON)

	w := env.do(t, http.MethodPut, "/api/contacts/"+id, token, `{"first_name":"Alicia","last_name":"Andersen","email":"alicia@contacts.example.com","phone_number":"+1-555-0199"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	require.Equal(t, "Alicia", data["first_name"])
	require.Nil(t, data["birthday"])
}

func TestUpdateContactIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createConfirmedUser(t, "owner@example.com", "password123")
	id := createContact(t, env, token, contactJSON)

	body := `{"first_name":"Alicia","last_name":"Andersen","email":"alicia@contacts.example.com","phone_number":"+1-555-0199","birthday":"1991-06-06"}`

	w := env.do(t, http.MethodPut, "/api/contacts/"+id, token, body)
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeBody(t, w)["data"].(map[string]any)

	w = env.do(t, http.MethodPut, "/api/contacts/"+id, token, body)
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeBody(t, w)["data"].(map[string]any)

	// Same body twice lands on the same state; only the update timestamp
	// moves.
	delete(first, "updated_at")
	delete(second, "updated_at")
	require.Equal(t, first, second)

	w = env.do(t, http.MethodGet, "/api/contacts/"+id, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	final := decodeBody(t, w)["data"].(map[string]any)
	delete(final, "updated_at")
	require.Equal(t, second, final)
}

func TestDeleteContact(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createConfirmedUser(t, "owner@example.com", "password123")
	id := createContact(t, env, token, contactJSON)

	w := env.do(t, http.MethodDelete, "/api/contacts/"+id, token, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/contacts/"+id, token, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, "/api/contacts/"+id, token, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListContactsPagination(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createConfirmedUser(t, "owner@example.com", "password123")

	for i := 0; i < 12; i++ {
		payload := fmt.Sprintf(`{"first_name":"C%d","last_name":"L%d","email":"c%d@example.com","phone_number":"%d"}`, i, i, i, i)
		createContact(t, env, token, payload)
	}

	w := env.do(t, http.MethodGet, "/api/contacts", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody(t, w)["data"].([]any), 10) // default limit

	w = env.do(t, http.MethodGet, "/api/contacts?limit=10&offset=10", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody(t, w)["data"].([]any), 2)

	// Out-of-range limits are rejected, not clamped.
	w = env.do(t, http.MethodGet, "/api/contacts?limit=5", token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, "/api/contacts?limit=501", token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, "/api/contacts?offset=-1", token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchContacts(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createConfirmedUser(t, "owner@example.com", "password123")
	_, otherToken := env.createConfirmedUser(t, "other@example.com", "password123")

	createContact(t, env, token, `{"first_name":"Alice","last_name":"Anderson","email":"alice@example.com","phone_number":"1"}`)
	createContact(t, env, token, `{"first_name":"Alice","last_name":"Brown","email":"ab@example.com","phone_number":"2"}`)
	createContact(t, env, otherToken, `{"first_name":"Alice","last_name":"Foreign","email":"af@example.com","phone_number":"3"}`)

	// Case-insensitive substring, conjunctive filters, owner scoped.
	w := env.do(t, http.MethodGet, "/api/contacts/search?first_name=ali", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody(t, w)["data"].([]any), 2)

	w = env.do(t, http.MethodGet, "/api/contacts/search?first_name=ali&last_name=brown", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	hits := decodeBody(t, w)["data"].([]any)
	require.Len(t, hits, 1)
	require.Equal(t, "Brown", hits[0].(map[string]any)["last_name"])

	// No filters is a plain page.
	w = env.do(t, http.MethodGet, "/api/contacts/search", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody(t, w)["data"].([]any), 2)

	// Search limit tops out at 100.
	w = env.do(t, http.MethodGet, "/api/contacts/search?limit=101", token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func contactIDs(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	raw, _ := decodeBody(t, w)["data"].([]any)
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		ids = append(ids, item.(map[string]any)["id"].(string))
	}
	return ids
}

func TestSearchWithoutFiltersMatchesList(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createConfirmedUser(t, "owner@example.com", "password123")

	for i := 0; i < 12; i++ {
		payload := fmt.Sprintf(`{"first_name":"C%d","last_name":"L%d","email":"c%d@example.com","phone_number":"%d"}`, i, i, i, i)
		createContact(t, env, token, payload)
	}

	// Page for page, a filterless search returns exactly what list returns.
	for _, page := range []struct{ limit, skip int }{{10, 0}, {10, 10}} {
		lw := env.do(t, http.MethodGet, fmt.Sprintf("/api/contacts?limit=%d&offset=%d", page.limit, page.skip), token, "")
		require.Equal(t, http.StatusOK, lw.Code)
		sw := env.do(t, http.MethodGet, fmt.Sprintf("/api/contacts/search?limit=%d&skip=%d", page.limit, page.skip), token, "")
		require.Equal(t, http.StatusOK, sw.Code)

		require.Equal(t, contactIDs(t, lw), contactIDs(t, sw))
	}
}

func TestBirthdaysEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createConfirmedUser(t, "owner@example.com", "password123")

	soon := time.Now().AddDate(-30, 0, 3).Format("2006-01-02")
	createContact(t, env, token, fmt.Sprintf(`{"first_name":"Soon","last_name":"Birthday","email":"soon@example.com","phone_number":"1","birthday":"%s"}`, soon))
	createContact(t, env, token, `{"first_name":"No","last_name":"Birthday","email":"none@example.com","phone_number":"2"}`)

	w := env.do(t, http.MethodGet, "/api/contacts/birthday", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	// days below the floor is rejected.
	w = env.do(t, http.MethodGet, "/api/contacts/birthday?days=3", token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/contacts/birthday?days=7", token, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSuggestWithoutIndexIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createConfirmedUser(t, "owner@example.com", "password123")

	w := env.do(t, http.MethodGet, "/api/contacts/suggest?q=ali", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decodeBody(t, w)["data"])

	w = env.do(t, http.MethodGet, "/api/contacts/suggest", token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
