package validator

import "testing"

func containers(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func TestValidateCommandAccepted(t *testing.T) {
	v := ValidateCommand("docker restart cache", containers("cache", "api"))
	if !v.Accepted {
		t.Fatalf("expected acceptance, got reason %q", v.Reason)
	}
}

func TestValidateCommandRejectsNonDocker(t *testing.T) {
	v := ValidateCommand("rm -rf /tmp/cache", containers("cache"))
	if v.Accepted || v.Reason != "Not a container-runtime command" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestValidateCommandRejectsShellInvocation(t *testing.T) {
	v := ValidateCommand("docker exec cache sh -c 'echo hi'", containers("cache"))
	if v.Accepted || v.Reason != "Shell invocation" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestValidateCommandRejectsPipe(t *testing.T) {
	v := ValidateCommand("docker logs cache | tail -n 5", containers("cache"))
	if v.Accepted || v.Reason != "Pipe / redirection" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestValidateCommandRejectsChaining(t *testing.T) {
	v := ValidateCommand("docker stop cache && docker start cache", containers("cache"))
	if v.Accepted || v.Reason != "Chaining" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestValidateCommandRejectsSubstitution(t *testing.T) {
	v := ValidateCommand("docker exec cache echo $(whoami)", containers("cache"))
	if v.Accepted || v.Reason != "Substitution" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestValidateCommandRejectsAssignment(t *testing.T) {
	v := ValidateCommand("docker exec cache FOO=bar env", containers("cache"))
	if v.Accepted || v.Reason != "Variable assignment" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestValidateCommandRejectsSubshell(t *testing.T) {
	v := ValidateCommand("docker exec cache (echo hi)", containers("cache"))
	if v.Accepted || v.Reason != "Subshell" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestValidateCommandRejectsNoKnownContainer(t *testing.T) {
	v := ValidateCommand("docker restart ghost", containers("cache", "api"))
	if v.Accepted || v.Reason != "No known container referenced" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestValidateCommandRejectsMultipleContainers(t *testing.T) {
	v := ValidateCommand("docker exec cache ping api", containers("cache", "api"))
	if v.Accepted {
		t.Fatal("expected rejection for multiple container references")
	}
	if v.Reason != "Multiple containers referenced: api, cache" {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestValidateCommandDoesNotMatchContainerSubstring(t *testing.T) {
	// "cache" must not match inside "cache-replica".
	v := ValidateCommand("docker restart cache-replica", containers("cache"))
	if v.Accepted || v.Reason != "No known container referenced" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}
