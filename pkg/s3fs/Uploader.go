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
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Uploader buffers writes and puts the object when closed.
type Uploader struct {
	ctx context.Context
	//
	acl              types.ObjectCannedACL
	client           Client
	bucket           *string
	bucketKeyEnabled bool
	key              *string
	contentType      *string
	//
	buffer *bytes.Buffer
	closed bool
}

func (u *Uploader) Close() error {
	if u.closed {
		return io.ErrUnexpectedEOF
	}

	u.closed = true

	// a read seeker is needed to rewind the body if the client retries
	reader := bytes.NewReader(u.buffer.Bytes())
	_, err := u.client.PutObject(u.ctx, &s3.PutObjectInput{
		ACL:              u.acl,
		Body:             reader,
		Bucket:           u.bucket,
		BucketKeyEnabled: u.bucketKeyEnabled,
		ContentLength:    int64(reader.Len()),
		ContentType:      u.contentType,
		Key:              u.key,
	})
	return err
}

func (u *Uploader) Write(p []byte) (int, error) {
	if u.closed {
		return 0, io.ErrClosedPipe
	}
	return u.buffer.Write(p)
}

type UploaderInput struct {
	ACL              types.ObjectCannedACL
	Client           Client
	Bucket           *string
	BucketKeyEnabled bool
	Key              *string
	ContentType      *string
}

func NewUploader(ctx context.Context, input *UploaderInput) *Uploader {
	return &Uploader{
		ctx:              ctx,
		acl:              input.ACL,
		client:           input.Client,
		bucket:           input.Bucket,
		bucketKeyEnabled: input.BucketKeyEnabled,
		key:              input.Key,
		contentType:      input.ContentType,
		buffer:           new(bytes.Buffer),
		closed:           false,
	}
}
