package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accountSchema() schema {
	return schema{Fields: []fieldSpec{
		{Key: "email", Label: "Email", Required: true, Check: checkEmail},
		{Key: "password", Label: "Password", Kind: fieldSecret, Required: true, Check: checkMinLength(8)},
		{Key: "role", Label: "Role", Kind: fieldChoice, Choices: []string{"admin", "editor"}},
		{Key: "seats", Label: "Seats", Kind: fieldNumber, Check: checkPositiveNumber},
		{Key: "active", Label: "Active", Kind: fieldToggle},
		{Key: "tags", Label: "Tags", Kind: fieldList},
		{Key: "avatar", Label: "Avatar", Kind: fieldFile},
		{Key: "bio", Label: "Bio", Kind: fieldMultiline},
	}}
}

func TestValidateCreateRequiresFields(t *testing.T) {
	s := accountSchema()

	errs := s.validate(formCreate, map[string]string{})
	require.Len(t, errs, 2)
	assert.Equal(t, "email", errs[0].Key)
	assert.Equal(t, "Email is required", errs[0].Message)
	assert.Equal(t, "password", errs[1].Key)

	errs = s.validate(formCreate, map[string]string{
		"email":    "ops@manrongroup.com",
		"password": "hunter2hunter2",
	})
	assert.Empty(t, errs)
}

func TestValidateEditSkipsEmptySecret(t *testing.T) {
	s := accountSchema()

	// blank password on edit means keep the stored one
	errs := s.validate(formEdit, map[string]string{"email": "ops@manrongroup.com"})
	assert.Empty(t, errs)

	// a typed password is still checked
	errs = s.validate(formEdit, map[string]string{
		"email":    "ops@manrongroup.com",
		"password": "short",
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "password", errs[0].Key)
	assert.Contains(t, errs[0].Message, "at least 8 characters")
}

func TestValidateChoiceAndChecks(t *testing.T) {
	s := accountSchema()
	base := map[string]string{"email": "ops@manrongroup.com", "password": "hunter2hunter2"}

	values := map[string]string{"role": "viewer"}
	for k, v := range base {
		values[k] = v
	}
	errs := s.validate(formCreate, values)
	require.Len(t, errs, 1)
	assert.Equal(t, "role", errs[0].Key)
	assert.Contains(t, errs[0].Message, "must be one of admin, editor")

	// choices match case-insensitively
	values["role"] = "ADMIN"
	assert.Empty(t, s.validate(formCreate, values))

	// checks run only on non-empty values
	values["seats"] = ""
	assert.Empty(t, s.validate(formCreate, values))
	values["seats"] = "-3"
	errs = s.validate(formCreate, values)
	require.Len(t, errs, 1)
	assert.Equal(t, "seats", errs[0].Key)
}

func TestPayloadShapesByKind(t *testing.T) {
	s := accountSchema()
	body := s.payload(formCreate, map[string]string{
		"email":    "ops@manrongroup.com",
		"password": "hunter2hunter2",
		"seats":    "12",
		"active":   "yes",
		"tags":     "vip, priority , ,repeat",
		"avatar":   "/tmp/avatar.png",
		"bio":      "",
	})

	assert.Equal(t, "ops@manrongroup.com", body["email"])
	assert.Equal(t, "hunter2hunter2", body["password"])
	assert.Equal(t, float64(12), body["seats"])
	assert.Equal(t, true, body["active"])
	assert.Equal(t, []string{"vip", "priority", "repeat"}, body["tags"])

	// files never travel in JSON
	_, ok := body["avatar"]
	assert.False(t, ok)

	// empty plain fields are sent on create so the server sees the blank
	assert.Equal(t, "", body["bio"])
	_, ok = body["role"]
	assert.True(t, ok)
}

func TestPayloadEditOmissions(t *testing.T) {
	s := accountSchema()
	body := s.payload(formEdit, map[string]string{
		"email":    "ops@manrongroup.com",
		"password": "",
		"bio":      "",
	})

	// blank secret and blank plain fields both stay home on edit
	_, ok := body["password"]
	assert.False(t, ok)
	_, ok = body["bio"]
	assert.False(t, ok)
	assert.Equal(t, "ops@manrongroup.com", body["email"])
}

func TestMultipartPayloadSplitsFiles(t *testing.T) {
	s := accountSchema()
	fields, files := s.multipartPayload(formCreate, map[string]string{
		"email":  "ops@manrongroup.com",
		"active": "no",
		"tags":   "one,two",
		"avatar": "/tmp/a.png, /tmp/b.png",
	})

	assert.Equal(t, "false", fields["active"])
	assert.JSONEq(t, `["one","two"]`, fields["tags"])
	require.Len(t, files, 2)
	assert.Equal(t, "avatar", files[0].Field)
	assert.Equal(t, "/tmp/a.png", files[0].Path)
	assert.Equal(t, "/tmp/b.png", files[1].Path)

	assert.True(t, s.hasFiles(map[string]string{"avatar": "/tmp/a.png"}))
	assert.False(t, s.hasFiles(map[string]string{"avatar": "   "}))
}

func TestToggleAndListParsing(t *testing.T) {
	for _, v := range []string{"yes", "TRUE", "y", "1", "on", " Yes "} {
		assert.True(t, toggleTrue(v), "%q should read as true", v)
	}
	for _, v := range []string{"no", "false", "", "0", "off"} {
		assert.False(t, toggleTrue(v), "%q should read as false", v)
	}

	assert.Equal(t, []string{"a", "b"}, splitList(" a , b ,"))
	assert.Empty(t, splitList("  "))
}

func TestFieldChecks(t *testing.T) {
	assert.NoError(t, checkEmail("kaan@manrongroup.com"))
	assert.Error(t, checkEmail("not-an-email"))
	assert.Error(t, checkEmail("Kaan <kaan@manrongroup.com>"))

	assert.NoError(t, checkURL("https://manrongroup.com/listings"))
	assert.Error(t, checkURL("manrongroup.com"))
	assert.Error(t, checkURL("https://"))

	assert.NoError(t, checkPositiveNumber("0"))
	assert.NoError(t, checkPositiveNumber("149.5"))
	assert.Error(t, checkPositiveNumber("-1"))
	assert.Error(t, checkPositiveNumber("twelve"))

	assert.NoError(t, checkDate("2025-07-01"))
	assert.NoError(t, checkDate("2025-07-01T09:30:00Z"))
	assert.Error(t, checkDate("July 1st"))

	err := checkMinLength(3)("ab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 3 characters")
}
