package recorder

import (
	"fmt"
	"strings"
)

const (
	PlaceholderTranscript = "Your transcribed text will appear here after successful upload and processing by the workflow."

	msgUnavailable      = "Error: Microphone access is required and audio capture must be supported on this system."
	msgRecording        = "Recording in progress..."
	msgRecordingStarted = "Recording started. Please speak clearly..."
	msgStopped          = "Recording stopped. Ready to upload."
	msgNoPayload        = "Error: No audio data to upload."
	msgUploading        = "Uploading audio and triggering transcription workflow..."
	msgTranscribed      = "Transcription successful! Result received from the workflow."
	msgRawResponse      = "Workflow triggered successfully. Raw response received (check for transcript field)."
)

// Status is the transient message shown under the controls.
type Status struct {
	Text string
}

// IsError classifies a status by its wording.
func (s Status) IsError() bool {
	return strings.Contains(s.Text, "Error") || strings.Contains(s.Text, "denied")
}

func (s Status) Empty() bool { return s.Text == "" }

func micErrorStatus(err error) Status {
	return Status{fmt.Sprintf("Error: Could not access microphone. Ensure permissions are granted. (%s)", err)}
}

func notAudioStatus(mime string) Status {
	return Status{fmt.Sprintf("Error: File must be an audio type. Got: %s", mime)}
}

func fileLoadedStatus(name string) Status {
	return Status{fmt.Sprintf("Audio file \"%s\" loaded successfully.", name)}
}

func fileSelectedTranscript(name string) string {
	return fmt.Sprintf("File selected: %s. Ready to upload.", name)
}

func uploadFailedStatus(err error) Status {
	return Status{fmt.Sprintf("Error: Failed to trigger workflow. Check the webhook URL and workflow status. (%s)", err)}
}
