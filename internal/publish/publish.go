package publish

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ObjectPutter is the part of the S3 client the publisher uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Publisher uploads a built site directory to a bucket.
type Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	log    *zap.SugaredLogger

	// OnFile is called after each upload.
	OnFile func(key string)
}

func New(client ObjectPutter, bucket, prefix string, sugar *zap.SugaredLogger) *Publisher {
	return &Publisher{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), log: sugar}
}

// Files lists the regular files under dir, relative and slash-separated.
func Files(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(out)
	return out, nil
}

func ContentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func (p *Publisher) Key(rel string) string {
	if p.prefix == "" {
		return rel
	}
	return p.prefix + "/" + rel
}

// Publish uploads every file under dir and returns how many were sent.
// The first failure stops the remaining uploads.
func (p *Publisher) Publish(ctx context.Context, dir string) (int, error) {
	files, err := Files(dir)
	if err != nil {
		return 0, err
	}

	var sent atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, rel := range files {
		g.Go(func() error {
			b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
			if err != nil {
				return fmt.Errorf("read %s: %w", rel, err)
			}
			key := p.Key(rel)
			_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(p.bucket),
				Key:         aws.String(key),
				Body:        bytes.NewReader(b),
				ContentType: aws.String(ContentType(rel)),
			})
			if err != nil {
				return fmt.Errorf("unable to upload %s to S3: %w", key, err)
			}
			sent.Add(1)
			if p.OnFile != nil {
				p.OnFile(key)
			}
			return nil
		})
	}
	err = g.Wait()

	n := int(sent.Load())
	if p.log != nil {
		p.log.Infow("published site", "bucket", p.bucket, "prefix", p.prefix, "files", n, "total", len(files))
	}
	return n, err
}
