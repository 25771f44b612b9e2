package utils

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"pager/models"
)

// EncodeRegistration builds the announcement sent on server/register.
// A freshly registered badge reports no ping, status 1 and no response.
func EncodeRegistration(id, name string) ([]byte, error) {
	return json.Marshal(models.RegistrationPayload{
		ID:       id,
		LastPing: 0,
		Name:     name,
		Status:   1,
		Response: models.ResponseNone,
	})
}

func EncodeHealth(id string) ([]byte, error) {
	return json.Marshal(models.HealthPayload{ID: id, Ping: 1})
}

func EncodePageResponse(id string, r models.PageResponse) ([]byte, error) {
	return json.Marshal(models.PageResponsePayload{ID: id, Response: r})
}

// DecodeCommand parses an inbound payload as a decimal integer command.
// Anything that is not valid UTF-8, not an integer, or not a known code
// decodes to models.Unrecognized.
func DecodeCommand(payload []byte) models.CommandCode {
	if !utf8.Valid(payload) {
		return models.Unrecognized
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return models.Unrecognized
	}
	c := models.CommandCode(n)
	if !c.Valid() {
		return models.Unrecognized
	}
	return c
}

// EncodeCommand is the broker-side encoding of a command, the inverse of DecodeCommand.
func EncodeCommand(c models.CommandCode) []byte {
	return []byte(strconv.Itoa(int(c)))
}
