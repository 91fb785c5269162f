package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"BeerMap-App/internal/config"
	"BeerMap-App/internal/logging"
)

// FirestoreClient チェックイン投票を保存している Firestore への接続
type FirestoreClient struct {
	client     *firestore.Client
	databaseID string
}

// NewFirestoreClient 設定から Firestore クライアントを作成する
// 認証情報ファイルが未指定なら Application Default Credentials（Cloud Run のサービスアカウントなど）を使う
func NewFirestoreClient(ctx context.Context, cfg config.StorageConfig) (*FirestoreClient, error) {
	if cfg.FirestoreProjectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID環境変数が設定されていません")
	}

	opts, err := clientOptions(cfg.FirestoreCredentialsFile)
	if err != nil {
		return nil, err
	}

	databaseID := databaseIDOrDefault(cfg.FirestoreDatabaseID)
	var client *firestore.Client
	if databaseID == firestore.DefaultDatabaseID {
		client, err = firestore.NewClient(ctx, cfg.FirestoreProjectID, opts...)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, cfg.FirestoreProjectID, databaseID, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("Firestoreクライアントの初期化に失敗: %w", err)
	}

	logging.Log.Infof("✅ Firestore client initialized (project: %s, database: %s)", cfg.FirestoreProjectID, databaseID)
	return &FirestoreClient{client: client, databaseID: databaseID}, nil
}

// clientOptions 認証情報ファイルの指定からクライアントオプションを組み立てる
// 指定されたファイルが存在しない場合は設定ミスとしてエラーにする
func clientOptions(credentialsFile string) ([]option.ClientOption, error) {
	if credentialsFile == "" {
		logging.Log.Info("☁️ Firestore: デフォルト認証を使用")
		return nil, nil
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("Firestoreの認証情報ファイルを読めません (%s): %w", credentialsFile, err)
	}
	logging.Log.Infof("📄 Firestore: 認証情報ファイル %s を使用", credentialsFile)
	return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}, nil
}

func databaseIDOrDefault(databaseID string) string {
	if databaseID == "" {
		return firestore.DefaultDatabaseID
	}
	return databaseID
}

// Close 接続を閉じる
func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

// GetClient 生の Firestore クライアントを取得
func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}

// HealthCheck クライアントの初期化状態を確認
func (fc *FirestoreClient) HealthCheck() error {
	if fc == nil || fc.client == nil {
		return fmt.Errorf("Firestoreクライアントが初期化されていません")
	}
	return nil
}
