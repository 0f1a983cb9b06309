package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gdg-garage/conference-api/internal/models"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	DiscordAuthorizeEndpoint = "https://discord.com/api/oauth2/authorize"
	DiscordTokenEndpoint     = "https://discord.com/api/oauth2/token"
	DiscordUserAPI           = "https://discord.com/api/users/@me"
	DiscordUserGuildsAPI     = "https://discord.com/api/users/@me/guilds"

	stateCookieName = "discord_oauth_state"
)

// DiscordEnabled reports whether Discord sign-in is configured.
func (h *AuthHandler) DiscordEnabled() bool {
	return h.cfg.DiscordClientID != "" && h.cfg.DiscordClientSecret != ""
}

func (h *AuthHandler) HandleDiscordLogin(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}
	state := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Path:     "/auth/discord",
	})

	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleDiscordCallback signs in the participant whose email matches the
// verified email of the Discord account and links the Discord ID to it.
func (h *AuthHandler) HandleDiscordCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)

	// Check Guild Membership
	if h.cfg.DiscordGuildID != "" {
		guildsResp, err := client.Get(h.discordGuildsURL)
		if err != nil {
			http.Error(w, "Failed to get user guilds", http.StatusInternalServerError)
			return
		}
		defer guildsResp.Body.Close()

		var guilds []struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(guildsResp.Body).Decode(&guilds); err != nil {
			http.Error(w, "Failed to decode user guilds", http.StatusInternalServerError)
			return
		}

		isMember := false
		for _, g := range guilds {
			if g.ID == h.cfg.DiscordGuildID {
				isMember = true
				break
			}
		}

		if !isMember {
			http.Error(w, "Access denied: You are not a member of the required guild.", http.StatusForbidden)
			return
		}
	}

	resp, err := client.Get(h.discordUserURL)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var discordUser struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&discordUser); err != nil {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}
	if discordUser.Email == "" || !discordUser.Verified {
		http.Error(w, "Discord account has no verified email", http.StatusForbidden)
		return
	}

	var participant models.Participant
	err = h.db.Where("email = ?", models.NormalizeEmail(discordUser.Email)).First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "No registration found for this email, please sign up first", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	err = h.db.Model(&participant).Update("discord_id", discordUser.ID).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		http.Error(w, "This Discord account is already linked to another participant", http.StatusConflict)
		return
	} else if err != nil {
		log.Printf("Failed to link discord account %s to participant %d: %v", discordUser.ID, participant.ID, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	cookie, err := h.SessionCookie(Session{ParticipantID: participant.ID})
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &cookie)

	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusSeeOther)
}
