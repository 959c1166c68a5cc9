// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package s3fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

type fakeObject struct {
	body         []byte
	contentType  string
	lastModified time.Time
}

// fakeClient is an in-memory S3 bucket.
type fakeClient struct {
	mutex   sync.Mutex
	bucket  string
	objects map[string]*fakeObject
	denied  map[string]bool
	puts    []*s3.PutObjectInput
}

func newFakeClient(bucket string) *fakeClient {
	return &fakeClient{
		bucket:  bucket,
		objects: map[string]*fakeObject{},
		denied:  map[string]bool{},
	}
}

func forbidden() error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: 403}},
			Err:      errors.New("forbidden"),
		},
	}
}

func (c *fakeClient) check(bucket *string, key *string) error {
	if aws.ToString(bucket) != c.bucket {
		return &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	}
	if key != nil && c.denied[aws.ToString(key)] {
		return forbidden()
	}
	return nil
}

func (c *fakeClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.check(params.Bucket, params.Key); err != nil {
		return nil, err
	}
	o, ok := c.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(o.body)),
	}, nil
}

func (c *fakeClient) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if err := c.check(params.Bucket, nil); err != nil {
		return nil, err
	}
	return &s3.HeadBucketOutput{}, nil
}

func (c *fakeClient) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.check(params.Bucket, params.Key); err != nil {
		return nil, err
	}
	o, ok := c.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
	}
	return &s3.HeadObjectOutput{
		ContentLength: int64(len(o.body)),
		LastModified:  aws.Time(o.lastModified),
	}, nil
}

func (c *fakeClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.check(params.Bucket, nil); err != nil {
		return nil, err
	}
	keys := []string{}
	for key := range c.objects {
		if strings.HasPrefix(key, aws.ToString(params.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	contents := []types.Object{}
	for _, key := range keys {
		contents = append(contents, types.Object{Key: aws.String(key)})
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func (c *fakeClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.check(params.Bucket, params.Key); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	c.objects[aws.ToString(params.Key)] = &fakeObject{
		body:         body,
		contentType:  aws.ToString(params.ContentType),
		lastModified: time.Now(),
	}
	c.puts = append(c.puts, params)
	return &s3.PutObjectOutput{}, nil
}
