package main

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	vapidSettingKey = "vapid_keys"
	vapidSubject    = "mailto:admin@fittrackpro.com"

	checkinTitle = "FitTrack Pro"
	checkinBody  = "Sunday Check-in! Plan your week ahead and log your weight."
)

// vapidKeys is the application server key pair for Web Push, both halves
// base64url without padding. Public is the uncompressed P-256 point.
type vapidKeys struct {
	Public  string `json:"public"`
	Private string `json:"private"`
}

// vapidKeyring lazily loads the process-wide VAPID key pair. The pair is read
// from app_settings, or generated and saved there on first use. Once loaded it
// is served from memory until reset.
type vapidKeyring struct {
	settings settingsStore

	mu   sync.Mutex
	keys *vapidKeys
}

func newVAPIDKeyring(settings settingsStore) *vapidKeyring {
	return &vapidKeyring{settings: settings}
}

// init returns the key pair, loading or creating it on the first call.
func (k *vapidKeyring) init(ctx context.Context) (vapidKeys, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.keys != nil {
		return *k.keys, nil
	}

	var stored vapidKeys
	found, err := k.settings.LoadSetting(ctx, vapidSettingKey, &stored)
	if err != nil {
		return vapidKeys{}, fmt.Errorf("load vapid keys: %w", err)
	}
	if !found {
		generated, err := generateVAPIDKeys()
		if err != nil {
			return vapidKeys{}, err
		}
		if err := k.settings.SaveSettingIfAbsent(ctx, vapidSettingKey, generated); err != nil {
			return vapidKeys{}, fmt.Errorf("save vapid keys: %w", err)
		}
		// Another instance may have saved first; whatever is stored wins.
		if found, err = k.settings.LoadSetting(ctx, vapidSettingKey, &stored); err != nil {
			return vapidKeys{}, fmt.Errorf("reload vapid keys: %w", err)
		}
		if !found {
			stored = generated
		}
		log.Printf("[vapidKeyring] initialised VAPID key pair")
	}

	k.keys = &stored
	return stored, nil
}

// reset drops the cached pair so the next init reads app_settings again.
func (k *vapidKeyring) reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys = nil
}

// generateVAPIDKeys creates a fresh P-256 key pair.
func generateVAPIDKeys() (vapidKeys, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return vapidKeys{}, fmt.Errorf("generate vapid keys: %w", err)
	}
	return vapidKeys{
		Public:  base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		Private: base64.RawURLEncoding.EncodeToString(priv.Bytes()),
	}, nil
}

// getVAPIDKey returns the public application server key.
// GET /api/push/vapid-key (public).
func (h *Handler) getVAPIDKey(c *gin.Context) {
	keys, err := h.vapid.init(c.Request.Context())
	if err != nil {
		log.Printf("[getVAPIDKey] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to load push keys")
		return
	}

	c.JSON(http.StatusOK, gin.H{"publicKey": keys.Public})
}

// pushSubscribe stores the browser's push subscription, replacing any earlier one.
// POST /api/push/subscribe. Body: { "endpoint": "...", "keys": { "p256dh": "...", "auth": "..." } }.
func (h *Handler) pushSubscribe(c *gin.Context) {
	userID := c.GetString("user_id")

	var body struct {
		Endpoint string            `json:"endpoint"`
		Keys     map[string]string `json:"keys"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !strings.HasPrefix(body.Endpoint, "https://") {
		apiError(c, http.StatusBadRequest, "endpoint must be an https URL")
		return
	}
	if body.Keys == nil {
		body.Keys = map[string]string{}
	}

	err := h.subs.SaveSubscription(c.Request.Context(), pushSubscription{
		UserID:   userID,
		Endpoint: body.Endpoint,
		Keys:     body.Keys,
	})
	if err != nil {
		log.Printf("[pushSubscribe] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscribed"})
}

// sendCheckin queues the weekly check-in notification for the user's browser.
// POST /api/push/send-checkin.
func (h *Handler) sendCheckin(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	sub, err := h.subs.Subscription(ctx, userID)
	if err != nil {
		log.Printf("[sendCheckin] subscription lookup: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to load subscription")
		return
	}
	if sub == nil {
		apiError(c, http.StatusNotFound, "No push subscription")
		return
	}
	if h.checkins == nil {
		apiError(c, http.StatusServiceUnavailable, "push delivery is not configured")
		return
	}

	keys, err := h.vapid.init(ctx)
	if err != nil {
		log.Printf("[sendCheckin] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to load push keys")
		return
	}

	err = h.checkins.PublishCheckin(ctx, checkinMessage{
		UserID:       userID,
		Endpoint:     sub.Endpoint,
		Keys:         sub.Keys,
		Title:        checkinTitle,
		Body:         checkinBody,
		VAPIDKey:     keys.Public,
		VAPIDSubject: vapidSubject,
		RequestedAt:  h.clock(),
	})
	if err != nil {
		log.Printf("[sendCheckin] publish for user %s: %v", userID, err)
		checkinsPublished.WithLabelValues("error").Inc()
		apiError(c, http.StatusInternalServerError, "Push failed")
		return
	}
	checkinsPublished.WithLabelValues("ok").Inc()

	c.JSON(http.StatusOK, gin.H{"message": "Notification sent"})
}
