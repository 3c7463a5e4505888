// Package backendtest runs an in-memory stand-in for the career-coaching
// backend. Package tests point a real client at it and steer its behavior
// through exported knobs (canned tokens, forced statuses, call counters).
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
)

// Favorite mirrors the backend's favorite record.
type Favorite struct {
	ID          int64  `json:"id"`
	URN         string `json:"urn"`
	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	ApplyLink   string `json:"apply_link,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Job mirrors one scraped listing.
type Job struct {
	URN         string `json:"urn"`
	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	ApplyLink   string `json:"apply_link,omitempty"`
	Source      string `json:"source,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Server is the fake backend. Zero-value knobs mean normal behavior.
type Server struct {
	*httptest.Server

	lock           sync.Mutex
	users          map[string]string // username -> password
	accessTokens   map[string]string // access token -> username
	refreshTokens  map[string]string // refresh token -> username
	favorites      map[string][]Favorite
	history        map[string][]chatMessage
	nextFavoriteID int64
	tokenSeq       int

	careerJobs []Job
	skillsJobs []Job

	// Canned token pair consumed by the next login/refresh.
	nextAccess  string
	nextRefresh string

	// Behavior knobs.
	NoCareerFields        bool   // GET /scrape-jobs -> 404
	FavoritesCreateStatus int    // non-zero: POST /favorites returns this
	FavoritesDeleteStatus int    // non-zero: DELETE /favorites/{id} returns this
	ChatAnswer            string // response to POST /career-chat

	// Call counters.
	RefreshCalls    int
	MeCalls         int
	FavoriteCreates int
}

// New starts the fake backend.
func New() *Server {
	s := &Server{
		users:          make(map[string]string),
		accessTokens:   make(map[string]string),
		refreshTokens:  make(map[string]string),
		favorites:      make(map[string][]Favorite),
		history:        make(map[string][]chatMessage),
		nextFavoriteID: 1,
		ChatAnswer:     "Ask me anything about your career.",
	}

	r := mux.NewRouter()
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/favorites", s.handleListFavorites).Methods(http.MethodGet)
	r.HandleFunc("/favorites", s.handleCreateFavorite).Methods(http.MethodPost)
	r.HandleFunc("/favorites/{id}", s.handleDeleteFavorite).Methods(http.MethodDelete)
	r.HandleFunc("/scrape-jobs", s.handleScrapeJobs).Methods(http.MethodGet)
	r.HandleFunc("/career-chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/career-chat/history", s.handleChatHistory).Methods(http.MethodGet)
	r.HandleFunc("/career-chat/history", s.handleClearHistory).Methods(http.MethodDelete)
	r.HandleFunc("/extract-text", s.handleExtractText).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// AddUser seeds an account without going through /register.
func (s *Server) AddUser(username, password string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.users[username] = password
}

// SetNextTokens makes the next minted pair use these exact values.
func (s *Server) SetNextTokens(access, refresh string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.nextAccess = access
	s.nextRefresh = refresh
}

// ExpireAccess invalidates an access token while leaving the refresh token
// usable, forcing the 401-then-refresh path.
func (s *Server) ExpireAccess(token string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.accessTokens, token)
}

// RevokeRefresh invalidates a refresh token.
func (s *Server) RevokeRefresh(token string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.refreshTokens, token)
}

// SetJobs seeds the two scrape-jobs result sets.
func (s *Server) SetJobs(career, skills []Job) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.careerJobs = career
	s.skillsJobs = skills
}

// Favorites returns a copy of the user's stored favorites.
func (s *Server) Favorites(username string) []Favorite {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Favorite(nil), s.favorites[username]...)
}

func (s *Server) mintPair() (string, string) {
	access, refresh := s.nextAccess, s.nextRefresh
	s.nextAccess, s.nextRefresh = "", ""
	if access == "" {
		s.tokenSeq++
		access = fmt.Sprintf("access-%d", s.tokenSeq)
	}
	if refresh == "" {
		refresh = fmt.Sprintf("refresh-%d", s.tokenSeq)
	}
	return access, refresh
}

func (s *Server) username(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return "", false
	}
	username, ok := s.accessTokens[auth[len(prefix):]]
	return username, ok
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Username == "" || payload.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if _, exists := s.users[payload.Username]; exists {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	s.users[payload.Username] = payload.Password
	writeJSON(w, http.StatusCreated, map[string]string{"username": payload.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form data")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	s.lock.Lock()
	defer s.lock.Unlock()
	if stored, ok := s.users[username]; !ok || stored != password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	access, refresh := s.mintPair()
	s.accessTokens[access] = username
	s.refreshTokens[refresh] = username
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	s.lock.Lock()
	defer s.lock.Unlock()
	s.RefreshCalls++

	username, ok := s.refreshTokens[payload.RefreshToken]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	// Rotate: the old pair is dead.
	delete(s.refreshTokens, payload.RefreshToken)
	access, refresh := s.mintPair()
	s.accessTokens[access] = username
	s.refreshTokens[refresh] = username
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.refreshTokens, payload.RefreshToken)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.MeCalls++

	username, ok := s.username(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": username})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	username, ok := s.username(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	list := s.favorites[username]
	if list == nil {
		list = []Favorite{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateFavorite(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	username, ok := s.username(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	if s.FavoritesCreateStatus != 0 {
		writeDetail(w, s.FavoritesCreateStatus, "favorite save rejected")
		return
	}

	var fav Favorite
	if err := json.NewDecoder(r.Body).Decode(&fav); err != nil || fav.URN == "" || fav.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title and urn are required")
		return
	}
	fav.ID = s.nextFavoriteID
	s.nextFavoriteID++
	s.favorites[username] = append(s.favorites[username], fav)
	s.FavoriteCreates++
	writeJSON(w, http.StatusCreated, fav)
}

func (s *Server) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	username, ok := s.username(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	if s.FavoritesDeleteStatus != 0 {
		writeDetail(w, s.FavoritesDeleteStatus, "favorite delete rejected")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid favorite id")
		return
	}
	list := s.favorites[username]
	for i, fav := range list {
		if fav.ID == id {
			s.favorites[username] = append(list[:i], list[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Favorite not found")
}

func (s *Server) handleScrapeJobs(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if r.URL.Query().Get("city") == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "city is required")
		return
	}
	if s.NoCareerFields {
		writeDetail(w, http.StatusNotFound, "No career fields found for user. Upload a CV first.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"career_field_search": map[string]any{"jobs": s.careerJobs},
		"skills_search":       map[string]any{"jobs": s.skillsJobs},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	username, ok := s.username(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Message == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	s.history[username] = append(s.history[username],
		chatMessage{Role: "user", Content: payload.Message},
		chatMessage{Role: "assistant", Content: s.ChatAnswer},
	)
	writeJSON(w, http.StatusOK, map[string]string{"answer": s.ChatAnswer})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	username, ok := s.username(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	history := s.history[username]
	if history == nil {
		history = []chatMessage{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	username, ok := s.username(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	delete(s.history, username)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	_, authed := s.username(r)
	s.lock.Unlock()

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "expected multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file field is required")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename":        header.Filename,
		"pages":           1,
		"characters":      len(content),
		"text":            string(content),
		"career_fields":   []string{"Software Engineering"},
		"overall_summary": "Experienced engineer.",
		"saved_to_db":     authed,
	})
}
