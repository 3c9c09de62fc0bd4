package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDownloadError(t *testing.T) {
	err := &DownloadError{Op: "job result", Job: "Terasology", Build: 42, Err: ErrBuildNotFound}

	if !errors.Is(err, ErrBuildNotFound) {
		t.Error("errors.Is(err, ErrBuildNotFound) = false, want true")
	}
	if got := err.Error(); !strings.Contains(got, "Terasology #42") {
		t.Errorf("Error() = %q, want build reference", got)
	}

	noBuild := &DownloadError{Op: "last successful build", Job: "Terasology", Err: ErrNetworkTimeout}
	if strings.Contains(noBuild.Error(), "#") {
		t.Errorf("Error() = %q, want no build reference", noBuild.Error())
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
		wantTarget  error
	}{
		{
			name:        "unknown line",
			err:         fmt.Errorf("%w %q", ErrUnknownLine, "nightly"),
			wantMessage: "Unknown job line",
			wantTarget:  ErrUnknownLine,
		},
		{
			name:        "build not found inside download error",
			err:         &DownloadError{Op: "job result", Job: "Terasology", Build: 3, Err: ErrBuildNotFound},
			wantMessage: "Build not found",
			wantTarget:  ErrBuildNotFound,
		},
		{
			name:        "auth failed",
			err:         fmt.Errorf("request failed: %w", ErrAuthFailed),
			wantMessage: "The build server rejected the request",
			wantTarget:  ErrAuthFailed,
		},
		{
			name:        "timeout",
			err:         &DownloadError{Op: "change log", Job: "Terasology", Err: ErrNetworkTimeout},
			wantMessage: "The build server did not answer in time",
			wantTarget:  ErrNetworkTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err)

			userErr, ok := wrapped.(*UserError)
			if !ok {
				t.Fatalf("WrapError() returned %T, want *UserError", wrapped)
			}
			if userErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", userErr.Message, tt.wantMessage)
			}
			if !errors.Is(wrapped, tt.wantTarget) {
				t.Errorf("errors.Is(wrapped, %v) = false, want true", tt.wantTarget)
			}
			if !strings.Contains(wrapped.Error(), "Hint:") {
				t.Errorf("Error() = %q, want a hint", wrapped.Error())
			}
		})
	}
}

func TestWrapError_Passthrough(t *testing.T) {
	if WrapError(nil) != nil {
		t.Error("WrapError(nil) should return nil")
	}

	plain := errors.New("disk full")
	if got := WrapError(plain); got != plain {
		t.Errorf("WrapError() = %v, want original error", got)
	}

	user := &UserError{Message: "already friendly"}
	if got := WrapError(fmt.Errorf("context: %w", user)); !errors.As(got, &user) {
		t.Errorf("WrapError() = %v, want to keep *UserError", got)
	}
}

func TestLineByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "stable", want: "TerasologyStable"},
		{name: "unstable", want: "Terasology"},
		{name: "Terasology", want: "Terasology"},
		{name: "DistroOmegaRelease", want: "TerasologyStable"},
		{name: "multiplayer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := LineByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LineByName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownLine) {
					t.Errorf("error = %v, want ErrUnknownLine", err)
				}
				return
			}
			if line.Name != tt.want {
				t.Errorf("LineByName() = %v, want %v", line.Name, tt.want)
			}
		})
	}
}

func TestParseJobResult(t *testing.T) {
	tests := []struct {
		in         string
		want       JobResult
		successful bool
		wantErr    bool
	}{
		{in: "SUCCESS", want: ResultSuccess, successful: true},
		{in: "UNSTABLE", want: ResultUnstable, successful: true},
		{in: "FAILURE", want: ResultFailure},
		{in: "ABORTED", want: ResultAborted},
		{in: "NOT_BUILT", want: ResultNotBuilt},
		{in: "", want: ResultNotBuilt},
		{in: "EXPLODED", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseJobResult(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseJobResult() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseJobResult() = %v, want %v", got, tt.want)
			}
			if got.Successful() != tt.successful {
				t.Errorf("Successful() = %v, want %v", got.Successful(), tt.successful)
			}
		})
	}
}

func TestArtifactKind_Path(t *testing.T) {
	for _, k := range []ArtifactKind{ArtifactGameZip, ArtifactOmegaZip, ArtifactVersionInfo} {
		p, err := k.Path()
		if err != nil || p == "" {
			t.Errorf("%v.Path() = %q, %v", k, p, err)
		}
	}
	if _, err := ArtifactKind(99).Path(); err == nil {
		t.Error("Path() for unknown kind should fail")
	}
}
