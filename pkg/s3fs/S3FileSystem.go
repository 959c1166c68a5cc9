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
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/navwar/goicon/pkg/fs"
)

const (
	Scheme = "s3://"
)

// ParseURI returns the bucket and key for a URI of the form s3://bucket/key.
func ParseURI(uri string) (string, string, error) {
	if !strings.HasPrefix(uri, Scheme) {
		return "", "", fmt.Errorf("uri %q does not begin with %q", uri, Scheme)
	}
	bucket, key, _ := strings.Cut(uri[len(Scheme):], "/")
	if len(bucket) == 0 {
		return "", "", fmt.Errorf("uri %q is missing a bucket", uri)
	}
	return bucket, key, nil
}

type S3FileSystem struct {
	client           Client
	bucket           string
	bucketKeyEnabled bool
}

// key returns the object key for the given name.
func (s3fs *S3FileSystem) key(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func (s3fs *S3FileSystem) Dir(name string) string {
	return path.Dir(name)
}

func (s3fs *S3FileSystem) IsNotExist(err error) bool {
	var responseError *awshttp.ResponseError
	if errors.As(err, &responseError) {
		if responseError.HTTPStatusCode() == 404 {
			return true
		}
	}
	var apiError smithy.APIError
	if errors.As(err, &apiError) {
		switch apiError.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}

func (s3fs *S3FileSystem) IsPermission(err error) bool {
	var responseError *awshttp.ResponseError
	if errors.As(err, &responseError) {
		if responseError.HTTPStatusCode() == 403 {
			return true
		}
	}
	var apiError smithy.APIError
	if errors.As(err, &apiError) {
		switch apiError.ErrorCode() {
		case "AccessDenied", "Forbidden":
			return true
		}
	}
	return false
}

func (s3fs *S3FileSystem) Join(name ...string) string {
	return path.Join(name...)
}

// MkdirAll writes a directory marker object for the given name.
func (s3fs *S3FileSystem) MkdirAll(ctx context.Context, name string, mode os.FileMode) error {
	key := s3fs.key(name)
	if len(key) == 0 {
		return nil
	}
	_, err := s3fs.client.PutObject(ctx, &s3.PutObjectInput{
		ACL:              types.ObjectCannedACLBucketOwnerFullControl,
		Body:             bytes.NewReader([]byte{}),
		Bucket:           aws.String(s3fs.bucket),
		BucketKeyEnabled: s3fs.bucketKeyEnabled,
		ContentLength:    int64(0),
		Key:              aws.String(key + "/"),
	})
	if err != nil {
		return err
	}
	return nil
}

func (s3fs *S3FileSystem) Open(ctx context.Context, name string) (fs.File, error) {
	getObjectOutput, err := s3fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(s3fs.key(name)),
	})
	if err != nil {
		return nil, err
	}
	defer getObjectOutput.Body.Close()
	body, err := io.ReadAll(getObjectOutput.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading body for object %q: %w", s3fs.URI(name), err)
	}
	return NewS3File(name, bytes.NewReader(body), nil), nil
}

// OpenFile opens the named object.  When opened for writing, the object is replaced when the file is closed.
func (s3fs *S3FileSystem) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (fs.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return s3fs.Open(ctx, name)
	}
	key := s3fs.key(name)
	var contentType *string
	if t := mime.TypeByExtension(path.Ext(key)); len(t) > 0 {
		contentType = aws.String(t)
	}
	uploader := NewUploader(ctx, &UploaderInput{
		ACL:              types.ObjectCannedACLBucketOwnerFullControl,
		Client:           s3fs.client,
		Bucket:           aws.String(s3fs.bucket),
		BucketKeyEnabled: s3fs.bucketKeyEnabled,
		Key:              aws.String(key),
		ContentType:      contentType,
	})
	return NewS3File(name, nil, uploader), nil
}

func (s3fs *S3FileSystem) Root() string {
	return Scheme + s3fs.bucket
}

// SameFile always returns false. Equal keys are rejected by fs.CheckDifferent.
func (s3fs *S3FileSystem) SameFile(a fs.FileInfo, b fs.FileInfo) bool {
	return false
}

// Stat returns the file info for the named object.
// A name is a directory if it is the bucket root or any object exists under its prefix.
func (s3fs *S3FileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	key := s3fs.key(name)

	if len(key) == 0 {
		_, err := s3fs.client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(s3fs.bucket),
		})
		if err != nil {
			return nil, err
		}
		return NewS3FileInfo("/", time.Time{}, true, int64(0)), nil
	}

	headObjectOutput, headObjectError := s3fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(key),
	})
	if headObjectError == nil {
		return NewS3FileInfo(
			path.Base(key),
			aws.ToTime(headObjectOutput.LastModified),
			false,
			headObjectOutput.ContentLength,
		), nil
	}
	if !s3fs.IsNotExist(headObjectError) {
		return nil, headObjectError
	}

	listObjectsOutput, err := s3fs.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s3fs.bucket),
		Prefix: aws.String(key + "/"),
	})
	if err != nil {
		return nil, fmt.Errorf("error listing objects under %q: %w", s3fs.URI(name), err)
	}
	if len(listObjectsOutput.Contents) > 0 {
		return NewS3FileInfo(path.Base(key), time.Time{}, true, int64(0)), nil
	}

	return nil, headObjectError
}

// URI returns the s3:// URI for the named object.
func (s3fs *S3FileSystem) URI(name string) string {
	return fmt.Sprintf("%s%s/%s", Scheme, s3fs.bucket, s3fs.key(name))
}

func NewS3FileSystem(client Client, bucket string, bucketKeyEnabled bool) *S3FileSystem {
	return &S3FileSystem{
		client:           client,
		bucket:           bucket,
		bucketKeyEnabled: bucketKeyEnabled,
	}
}
