// SPDX-License-Identifier: EPL-2.0

package soundflow

// Result is the closed set of outcomes the pipeline can report. The
// numeric values and message strings are part of the public contract:
// hosts match on them across process and language boundaries.
type Result int32

const (
	ResultSuccess Result = 0

	ResultInvalidArgs      Result = -1
	ResultAllocationFailed Result = -2

	ResultDecoderOpenInput           Result = -10
	ResultDecoderFindStreamInfo      Result = -11
	ResultDecoderNoAudioStream       Result = -12
	ResultDecoderCodecNotFound       Result = -13
	ResultDecoderCodecContextAlloc   Result = -14
	ResultDecoderCodecOpenFailed     Result = -15
	ResultDecoderInvalidTargetFormat Result = -16
	ResultDecoderResamplerInitFailed Result = -17
	ResultDecoderPacketFrameAlloc    Result = -18
	ResultDecoderSeekFailed          Result = -19
	ResultDecoderDecodingFailed      Result = -20

	ResultEncoderFormatNotFound      Result = -30
	ResultEncoderCodecNotFound       Result = -31
	ResultEncoderStreamAlloc         Result = -32
	ResultEncoderCodecContextAlloc   Result = -33
	ResultEncoderCodecOpenFailed     Result = -34
	ResultEncoderContextParams       Result = -35
	ResultEncoderWriteHeader         Result = -36
	ResultEncoderInvalidInputFormat  Result = -37
	ResultEncoderResamplerInitFailed Result = -38
	ResultEncoderPacketFrameAlloc    Result = -39
	ResultEncoderEncodingFailed      Result = -40
	ResultEncoderWriteFailed         Result = -41
)

var resultMessages = map[Result]string{
	ResultSuccess:                    "Success",
	ResultInvalidArgs:                "Invalid arguments provided",
	ResultAllocationFailed:           "Memory allocation failed",
	ResultDecoderOpenInput:           "Failed to open input stream",
	ResultDecoderFindStreamInfo:      "Failed to find stream information",
	ResultDecoderNoAudioStream:       "No suitable audio stream found",
	ResultDecoderCodecNotFound:       "Audio codec not found",
	ResultDecoderCodecContextAlloc:   "Failed to allocate codec context",
	ResultDecoderCodecOpenFailed:     "Failed to open codec",
	ResultDecoderInvalidTargetFormat: "Invalid target sample format",
	ResultDecoderResamplerInitFailed: "Failed to initialize audio resampler",
	ResultDecoderPacketFrameAlloc:    "Failed to allocate packet or frame",
	ResultDecoderSeekFailed:          "Seek operation failed",
	ResultDecoderDecodingFailed:      "An unrecoverable error occurred during the decoding process",
	ResultEncoderFormatNotFound:      "Output format not found",
	ResultEncoderCodecNotFound:       "Audio codec for the format not found or not enabled",
	ResultEncoderStreamAlloc:         "Failed to allocate new audio stream",
	ResultEncoderCodecContextAlloc:   "Failed to allocate encoder codec context",
	ResultEncoderCodecOpenFailed:     "Failed to open encoder codec",
	ResultEncoderContextParams:       "Failed to copy codec parameters to stream",
	ResultEncoderWriteHeader:         "Failed to write output file header",
	ResultEncoderInvalidInputFormat:  "Invalid input sample format",
	ResultEncoderResamplerInitFailed: "Failed to initialize audio resampler for encoding",
	ResultEncoderPacketFrameAlloc:    "Failed to allocate packet or frame for encoding",
	ResultEncoderEncodingFailed:      "An unrecoverable error occurred during the encoding process",
	ResultEncoderWriteFailed:         "An I/O error occurred while writing the encoded data",
}

// String returns the message for r. Values outside the defined set map
// to "Unknown error".
func (r Result) String() string {
	if msg, ok := resultMessages[r]; ok {
		return msg
	}
	return "Unknown error"
}

// Error makes Result usable as an error value; every non-success
// Result doubles as a sentinel that errors.Is can match against.
// ResultSuccess should never be returned as an error.
func (r Result) Error() string { return r.String() }

// Err returns r as an error, or nil for ResultSuccess.
func (r Result) Err() error {
	if r == ResultSuccess {
		return nil
	}
	return r
}
