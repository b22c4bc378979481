//go:build e2e

package e2e

import (
	"net/http"
	"testing"

	"github.com/profilehub/apiserver/internal/auth"
)

func TestAccountLifecycle(t *testing.T) {
	email := uniqueEmail("account")
	user := registerUser(t, email)

	if len(user.Roles) != 1 || user.Roles[0] != auth.RoleUser {
		t.Fatalf("unexpected initial roles: %v", user.Roles)
	}

	status, body := postJSON(t, baseURL()+"/auth/register", "", map[string]string{
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"password":   password,
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("duplicate register status %d: %s", status, body)
	}

	token := loginUser(t, email)

	status, body = doJSON(t, http.MethodDelete, baseURL()+"/auth/account", token, map[string]string{
		"password": password,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("deactivate status %d: %s", status, body)
	}

	status, body = postJSON(t, baseURL()+"/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("login after deactivation status %d: %s", status, body)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	email := uniqueEmail("reset")
	registerUser(t, email)

	status, body := postJSON(t, baseURL()+"/auth/reset-password", "", map[string]string{
		"email": email,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("request reset status %d: %s", status, body)
	}

	// The recovery code goes out by mail; derive it from the shared
	// secret the server was started with.
	issuer, err := auth.NewOTPIssuer(otpSecret, auth.DefaultOTPStep, 1)
	if err != nil {
		t.Fatalf("new otp issuer: %v", err)
	}
	code := issuer.Issue()

	status, body = postJSON(t, baseURL()+"/auth/reset-password-confirm", "", map[string]string{
		"email":    email,
		"token":    code,
		"password": "newpass456!",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("confirm reset status %d: %s", status, body)
	}

	status, body = postJSON(t, baseURL()+"/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("login with old password status %d: %s", status, body)
	}

	var out authResponse
	status, body = postJSON(t, baseURL()+"/auth/login", "", map[string]string{
		"email":    email,
		"password": "newpass456!",
	}, &out)
	if status != http.StatusOK {
		t.Fatalf("login with new password status %d: %s", status, body)
	}
	if out.Token == "" {
		t.Fatal("login response missing token")
	}

	status, body = postJSON(t, baseURL()+"/auth/reset-password-confirm", "", map[string]string{
		"email":    email,
		"token":    "000000",
		"password": "whatever789!",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("confirm with bogus code status %d: %s", status, body)
	}
}

func TestRoleManagement(t *testing.T) {
	targetEmail := uniqueEmail("target")
	target := registerUser(t, targetEmail)

	adminEmail := uniqueEmail("admin")
	registerUser(t, adminEmail)
	if err := promoteUserToAdmin(adminEmail); err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	adminToken := loginUser(t, adminEmail)

	targetToken := loginUser(t, targetEmail)
	status, body := postJSON(t, baseURL()+"/auth/roles/grant", targetToken, map[string]any{
		"user_id": target.ID,
		"roles":   []string{auth.RoleModerator},
	}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("grant as non-admin status %d: %s", status, body)
	}

	var out userResponse
	status, body = postJSON(t, baseURL()+"/auth/roles/grant", adminToken, map[string]any{
		"user_id": target.ID,
		"roles":   []string{auth.RoleModerator},
	}, &out)
	if status != http.StatusOK {
		t.Fatalf("grant status %d: %s", status, body)
	}
	if !auth.HasAnyRole(out.User.Roles, []string{auth.RoleModerator}) {
		t.Fatalf("moderator not granted: %v", out.User.Roles)
	}

	status, body = postJSON(t, baseURL()+"/auth/roles/revoke", adminToken, map[string]any{
		"user_id": target.ID,
		"roles":   []string{auth.RoleModerator, auth.RoleUser},
	}, &out)
	if status != http.StatusOK {
		t.Fatalf("revoke status %d: %s", status, body)
	}
	if auth.HasAnyRole(out.User.Roles, []string{auth.RoleModerator}) {
		t.Fatalf("moderator survived revoke: %v", out.User.Roles)
	}
	if !auth.HasAnyRole(out.User.Roles, []string{auth.RoleUser}) {
		t.Fatalf("baseline role revoked: %v", out.User.Roles)
	}

	status, body = postJSON(t, baseURL()+"/auth/roles/grant", adminToken, map[string]any{
		"user_id": target.ID,
		"roles":   []string{"SUPERUSER"},
	}, nil)
	if status != http.StatusNotAcceptable {
		t.Fatalf("grant unknown role status %d: %s", status, body)
	}
}
