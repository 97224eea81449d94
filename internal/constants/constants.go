package constants

// GoogleCredentialsEnv is the environment variable the Google client
// libraries read service account credentials from. The task parameter
// overrides it when set.
const GoogleCredentialsEnv = "GOOGLE_APPLICATION_CREDENTIALS"

// DetectedTextKey is the key under which the full detected text block is
// published in the task's data output.
const DetectedTextKey = "Detected text"
