package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dcode-github/property_tours/contracts"
	"github.com/dcode-github/property_tours/models"
	"github.com/dcode-github/property_tours/repository"
	"github.com/dcode-github/property_tours/utils"
)

// profilePatch distinguishes an absent field from an explicit null, which
// clears the field.
type profilePatch struct {
	FullName           *string         `json:"fullName"`
	PhoneNumber        json.RawMessage `json:"phoneNumber"`
	AvatarURL          json.RawMessage `json:"avatarUrl"`
	LookingFor         json.RawMessage `json:"lookingFor"`
	PreferredLocations []string        `json:"preferredLocations"`
}

func nullableString(raw json.RawMessage) (*string, bool) {
	if raw == nil {
		return nil, false
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return nil, true
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil, true
	}
	return &trimmed, true
}

func (p profilePatch) fields() map[string]interface{} {
	set := map[string]interface{}{}
	if p.FullName != nil {
		set["fullName"] = strings.TrimSpace(*p.FullName)
	}
	if v, ok := nullableString(p.PhoneNumber); ok {
		set["phoneNumber"] = v
	}
	if v, ok := nullableString(p.AvatarURL); ok {
		set["avatarUrl"] = v
	}
	if v, ok := nullableString(p.LookingFor); ok {
		if v == nil {
			set["lookingFor"] = (*models.LookingFor)(nil)
		} else {
			lf := models.LookingFor(*v)
			set["lookingFor"] = &lf
		}
	}
	if p.PreferredLocations != nil {
		locations := make([]string, 0, len(p.PreferredLocations))
		for _, l := range p.PreferredLocations {
			if l = strings.TrimSpace(l); l != "" {
				locations = append(locations, l)
			}
		}
		set["preferredLocations"] = locations
	}
	return set
}

func GetProfile(profiles repository.ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		profile, err := profiles.Get(r.Context(), userID)
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Profile not found")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to fetch profile", err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, "Fetched profile", profile)
	}
}

func UpdateProfile(profiles repository.ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		body, ok := readBody(w, r, contracts.ProfileUpdate)
		if !ok {
			return
		}

		var patch profilePatch
		if !decodeBody(w, r, body, &patch) {
			return
		}

		profile, err := profiles.Update(r.Context(), userID, patch.fields())
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Profile not found")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to update profile", err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, "Profile updated", profile)
	}
}
