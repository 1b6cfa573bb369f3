package rekognition

import (
	"context"
	"encoding/base64"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/pkg/errors"

	"github.com/blueprint-hub/hub-server/moderation"
)

const DefaultRejectConfidence = 70.0

// Detector is the subset of the Rekognition API used by Client.
type Detector interface {
	DetectModerationLabels(ctx context.Context, params *rekognition.DetectModerationLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectModerationLabelsOutput, error)
}

// Client moderates images with AWS Rekognition. Rekognition has no text
// moderation, so text inputs always come back unflagged.
type Client struct {
	detector         Detector
	rejectConfidence float64
}

func NewClient(detector Detector, rejectConfidence float64) *Client {
	if rejectConfidence <= 0 {
		rejectConfidence = DefaultRejectConfidence
	}
	return &Client{
		detector:         detector,
		rejectConfidence: rejectConfidence,
	}
}

// NewAWSClient creates a client that uses ambient AWS credentials.
func NewAWSClient(ctx context.Context, region string, rejectConfidence float64) (*Client, error) {
	var loadOptions []func(*awsconfig.LoadOptions) error
	if region = strings.TrimSpace(region); region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, &moderation.ConfigurationError{Setting: "automod.aws_region", Reason: err.Error()}
	}

	return NewClient(rekognition.NewFromConfig(cfg), rejectConfidence), nil
}

func (c *Client) Moderate(ctx context.Context, inputs []moderation.Input) ([]moderation.Result, error) {
	results := make([]moderation.Result, len(inputs))
	for i, in := range inputs {
		if in.Type != moderation.InputTypeImageURL {
			continue
		}

		data, err := decodeDataURI(in.ImageURL)
		if err != nil {
			return nil, err
		}

		output, err := c.detector.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
			Image: &types.Image{Bytes: data},
		})
		if err != nil {
			return nil, moderation.NewServiceError(0, errors.Wrap(err, "rekognition detect moderation labels failed"))
		}

		results[i] = c.toResult(output.ModerationLabels)
	}
	return results, nil
}

func (c *Client) toResult(labels []types.ModerationLabel) moderation.Result {
	var result moderation.Result
	for _, label := range labels {
		confidence := float64(aws.ToFloat32(label.Confidence))
		violated := confidence >= c.rejectConfidence
		if violated {
			result.Flagged = true
		}

		result.Categories = append(result.Categories, moderation.Category{
			Name:     aws.ToString(label.Name),
			Violated: violated,
			Score:    confidence / 100,
		})
	}
	sort.Slice(result.Categories, func(i, j int) bool {
		return result.Categories[i].Name < result.Categories[j].Name
	})
	return result
}

func decodeDataURI(uri string) ([]byte, error) {
	_, encoded, ok := strings.Cut(uri, ";base64,")
	if !ok || !strings.HasPrefix(uri, "data:") {
		return nil, errors.New("image is not a base64 data uri")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base64 image")
	}
	return data, nil
}
