package grpc

import (
	"context"

	"NicoQuitService/internal/models"

	"google.golang.org/grpc"
)

// ServiceName полное имя gRPC сервиса
const ServiceName = "nico.v1.QuitService"

// QuitServiceServer методы сервиса, доступные по gRPC
type QuitServiceServer interface {
	CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*models.ProfileResponse, error)
	GetProfile(ctx context.Context, req *models.UserRequest) (*models.ProfileResponse, error)
	UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.ProfileResponse, error)
	GetStats(ctx context.Context, req *models.UserRequest) (*models.StatsResponse, error)

	GetPet(ctx context.Context, req *models.UserRequest) (*models.PetResponse, error)
	FeedPet(ctx context.Context, req *models.FeedPetRequest) (*models.PetResponse, error)
	InteractPet(ctx context.Context, req *models.UserRequest) (*models.PetResponse, error)
	RevivePet(ctx context.Context, req *models.UserRequest) (*models.PetResponse, error)
	SetOutfit(ctx context.Context, req *models.SetOutfitRequest) (*models.PetResponse, error)
	AddAccessory(ctx context.Context, req *models.AccessoryRequest) (*models.PetResponse, error)
	RemoveAccessory(ctx context.Context, req *models.AccessoryRequest) (*models.PetResponse, error)

	AddInventoryItem(ctx context.Context, req *models.AddItemRequest) (*models.InventoryResponse, error)
	ListInventory(ctx context.Context, req *models.UserRequest) (*models.InventoryResponse, error)
	GetItemTotal(ctx context.Context, req *models.ItemTotalRequest) (*models.ItemTotalResponse, error)

	SubmitCheckin(ctx context.Context, req *models.SubmitCheckinRequest) (*models.CheckinResponse, error)
	GetTodayCheckin(ctx context.Context, req *models.UserRequest) (*models.CheckinResponse, error)
	ListCheckins(ctx context.Context, req *models.UserRequest) (*models.CheckinListResponse, error)

	LogCrisis(ctx context.Context, req *models.LogCrisisRequest) (*models.CrisisResponse, error)
	ListCrisisLogs(ctx context.Context, req *models.UserRequest) (*models.CrisisListResponse, error)

	CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.PostResponse, error)
	ListFeed(ctx context.Context, req *models.FeedRequest) (*models.FeedResponse, error)
	ReactToPost(ctx context.Context, req *models.ReactRequest) (*models.SimpleResponse, error)
	ReportPost(ctx context.Context, req *models.ReportRequest) (*models.SimpleResponse, error)

	ListAchievements(ctx context.Context, req *models.UserRequest) (*models.AchievementsResponse, error)
}

// QuitServiceDesc описание сервиса для grpc.Server.RegisterService.
// Сообщения кодируются JSON кодеком, поэтому сгенерированный protobuf код не нужен.
var QuitServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QuitServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateProfile", QuitServiceServer.CreateProfile),
		unary("GetProfile", QuitServiceServer.GetProfile),
		unary("UpdateProfile", QuitServiceServer.UpdateProfile),
		unary("GetStats", QuitServiceServer.GetStats),
		unary("GetPet", QuitServiceServer.GetPet),
		unary("FeedPet", QuitServiceServer.FeedPet),
		unary("InteractPet", QuitServiceServer.InteractPet),
		unary("RevivePet", QuitServiceServer.RevivePet),
		unary("SetOutfit", QuitServiceServer.SetOutfit),
		unary("AddAccessory", QuitServiceServer.AddAccessory),
		unary("RemoveAccessory", QuitServiceServer.RemoveAccessory),
		unary("AddInventoryItem", QuitServiceServer.AddInventoryItem),
		unary("ListInventory", QuitServiceServer.ListInventory),
		unary("GetItemTotal", QuitServiceServer.GetItemTotal),
		unary("SubmitCheckin", QuitServiceServer.SubmitCheckin),
		unary("GetTodayCheckin", QuitServiceServer.GetTodayCheckin),
		unary("ListCheckins", QuitServiceServer.ListCheckins),
		unary("LogCrisis", QuitServiceServer.LogCrisis),
		unary("ListCrisisLogs", QuitServiceServer.ListCrisisLogs),
		unary("CreatePost", QuitServiceServer.CreatePost),
		unary("ListFeed", QuitServiceServer.ListFeed),
		unary("ReactToPost", QuitServiceServer.ReactToPost),
		unary("ReportPost", QuitServiceServer.ReportPost),
		unary("ListAchievements", QuitServiceServer.ListAchievements),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nico/v1/quit.proto",
}

// RegisterQuitServiceServer регистрирует реализацию сервиса на gRPC сервере
func RegisterQuitServiceServer(s grpc.ServiceRegistrar, srv QuitServiceServer) {
	s.RegisterService(&QuitServiceDesc, srv)
}

// unary строит описание унарного метода из метода интерфейса
func unary[Req, Resp any](name string, call func(QuitServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}

			server := srv.(QuitServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}

			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(server, ctx, req.(*Req))
			})
		},
	}
}

// QuitServiceClient клиент сервиса поверх JSON кодека
type QuitServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewQuitServiceClient создает клиент для установленного соединения
func NewQuitServiceClient(cc grpc.ClientConnInterface) *QuitServiceClient {
	return &QuitServiceClient{cc: cc}
}

// Invoke вызывает метод сервиса по короткому имени, например "GetPet"
func (c *QuitServiceClient) Invoke(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, opts...)
}

// GetStats возвращает показатели прогресса пользователя
func (c *QuitServiceClient) GetStats(ctx context.Context, req *models.UserRequest, opts ...grpc.CallOption) (*models.StatsResponse, error) {
	resp := new(models.StatsResponse)
	if err := c.Invoke(ctx, "GetStats", req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetPet возвращает состояние питомца
func (c *QuitServiceClient) GetPet(ctx context.Context, req *models.UserRequest, opts ...grpc.CallOption) (*models.PetResponse, error) {
	resp := new(models.PetResponse)
	if err := c.Invoke(ctx, "GetPet", req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}
